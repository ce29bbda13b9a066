// Package importer brings training-log CSV exports into the server:
// it parses session files, converts them to workout payloads, posts
// them to the API, and tracks imported files in a local SQLite state
// database so re-runs are idempotent.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Session is one parsed training session from a log export.
type Session struct {
	Name        string
	Date        time.Time
	DurationMin int
	Exercises   []Exercise
}

// Exercise is one exercise within a session with its logged sets.
type Exercise struct {
	Name string
	Sets []Set
}

// Set is one logged set. RPE is nil when untracked.
type Set struct {
	WeightKg float64
	Reps     int
	RPE      *float64
}

var (
	// sessionHeaderRe matches: "Push Day";"2026-02-19";"62 min"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2})";"(\d+)\s*min"$`)

	// exerciseHeaderRe matches: "1. Bench Press"
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+)"$`)

	// setDataRe matches: 1;100;8;8.5 (set;kg;reps;rpe, rpe may be "-")
	setDataRe = regexp.MustCompile(`^(\d+);([\d.,]+);(\d+);(.+)$`)

	// columnHeaderRe matches: #;KG;REPS;RPE
	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS;RPE$`)
)

// Parse reads a RepCoach CSV log export and returns the parsed
// sessions. Sessions are separated by blank lines.
func Parse(r io.Reader) ([]Session, error) {
	scanner := bufio.NewScanner(r)
	var sessions []Session
	var current *Session
	var currentExercise *Exercise

	flushExercise := func() {
		if current != nil && currentExercise != nil {
			current.Exercises = append(current.Exercises, *currentExercise)
			currentExercise = nil
		}
	}
	flushSession := func() {
		flushExercise()
		if current != nil {
			sessions = append(sessions, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			flushSession()
			continue
		}
		if columnHeaderRe.MatchString(line) {
			continue
		}

		if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
			flushSession()
			date, err := time.Parse("2006-01-02", m[2])
			if err != nil {
				return nil, fmt.Errorf("parsing session date %q: %w", m[2], err)
			}
			duration, _ := strconv.Atoi(m[3])
			current = &Session{Name: m[1], Date: date, DurationMin: duration}
			continue
		}

		if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, fmt.Errorf("exercise without session: %q", line)
			}
			flushExercise()
			currentExercise = &Exercise{Name: m[2]}
			continue
		}

		if m := setDataRe.FindStringSubmatch(line); m != nil {
			if currentExercise == nil {
				return nil, fmt.Errorf("set without exercise: %q", line)
			}
			weight, err := parseDecimal(m[2])
			if err != nil {
				return nil, fmt.Errorf("parsing weight %q: %w", m[2], err)
			}
			reps, _ := strconv.Atoi(m[3])
			set := Set{WeightKg: weight, Reps: reps}
			if rpe, err := parseDecimal(m[4]); err == nil {
				set.RPE = &rpe
			}
			currentExercise.Sets = append(currentExercise.Sets, set)
			continue
		}

		return nil, fmt.Errorf("unrecognized line: %q", line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	flushSession()

	return sessions, nil
}

// parseDecimal accepts both dot and comma decimal separators, which
// vary by export locale.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	return strconv.ParseFloat(s, 64)
}
