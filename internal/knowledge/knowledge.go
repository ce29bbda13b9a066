// Package knowledge holds the static exercise knowledge base: muscle
// maps, priorities, time defaults, contraindications, and equipment
// increments. It is loaded once at startup and never mutated, so a
// single Base can be shared across goroutines without locking.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var defaultData []byte

// Landmarks are a muscle group's weekly working-set bands: minimum
// effective, top of optimal, and maximum recoverable volume.
type Landmarks struct {
	MinWeeklySets     int `yaml:"min_weekly_sets"`
	OptimalWeeklySets int `yaml:"optimal_weekly_sets"`
	MaxWeeklySets     int `yaml:"max_weekly_sets"`
}

// Prescription is an exercise's default sets/reps/rest.
type Prescription struct {
	Sets        int `yaml:"sets"`
	Reps        int `yaml:"reps"`
	RestSeconds int `yaml:"rest_seconds"`
}

// Exercise is one knowledge-base entry. Contraindications maps an
// injury keyword to a substitute exercise name; an empty substitute
// means the exercise must be dropped for that injury.
type Exercise struct {
	Name              string            `yaml:"name"`
	Equipment         string            `yaml:"equipment"`
	Muscles           []string          `yaml:"muscles"`
	Priority          int               `yaml:"priority"`
	Prescription      Prescription      `yaml:"prescription"`
	RepLow            int               `yaml:"rep_low"`
	RepHigh           int               `yaml:"rep_high"`
	Contraindications map[string]string `yaml:"contraindications"`
}

// Base is the read-only lookup interface the core components consume.
// Implementations must be immutable after construction.
type Base interface {
	// MuscleGroups returns every known muscle group, sorted.
	MuscleGroups() []string
	// GroupLandmarks returns the weekly-set landmarks for a muscle
	// group, falling back to defaults for unknown groups.
	GroupLandmarks(muscle string) Landmarks
	// ExercisesForMuscle returns candidate exercise names for a muscle
	// group, highest priority first. Nil for unknown groups.
	ExercisesForMuscle(muscle string) []string
	// MusclesForExercise returns the muscle groups an exercise targets.
	// Nil for unknown exercises. Name match is case-insensitive.
	MusclesForExercise(name string) []string
	// Priority returns the exercise's rank (higher keeps it longer
	// under time pressure); 0 for unknown exercises.
	Priority(name string) int
	// Defaults returns the exercise's default prescription.
	Defaults(name string) (Prescription, bool)
	// Equipment returns the exercise's equipment type, "" if unknown.
	Equipment(name string) string
	// RepRange returns the exercise's target rep range; ok is false
	// when the entry has none configured.
	RepRange(name string) (low, high int, ok bool)
	// Increment returns the smallest load change for an equipment type.
	Increment(equipment string) float64
	// IsContraindicated reports whether the exercise must be avoided
	// for the given injury.
	IsContraindicated(name, injury string) bool
	// Substitute returns a replacement exercise for the (exercise,
	// injury) pair, ok=false when none is known.
	Substitute(name, injury string) (string, bool)
}

type file struct {
	MuscleGroups        map[string]Landmarks `yaml:"muscle_groups"`
	Exercises           []Exercise           `yaml:"exercises"`
	EquipmentIncrements map[string]float64   `yaml:"equipment_increments"`
}

// StaticBase is the YAML-backed Base implementation.
type StaticBase struct {
	groups     []string
	landmarks  map[string]Landmarks
	byName     map[string]Exercise
	byMuscle   map[string][]string
	increments map[string]float64
}

var defaultLandmarks = Landmarks{MinWeeklySets: 10, OptimalWeeklySets: 16, MaxWeeklySets: 22}

// Default returns the Base built from the embedded knowledge file.
func Default() (*StaticBase, error) {
	return parse(defaultData)
}

// LoadFile builds a Base from an external YAML file, for deployments
// that override the embedded catalog.
func LoadFile(path string) (*StaticBase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file: %w", err)
	}
	return parse(data)
}

// New builds a Base from in-memory entries. Intended for tests.
func New(landmarks map[string]Landmarks, exercises []Exercise, increments map[string]float64) *StaticBase {
	return build(file{MuscleGroups: landmarks, Exercises: exercises, EquipmentIncrements: increments})
}

func parse(data []byte) (*StaticBase, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing knowledge file: %w", err)
	}
	if len(f.Exercises) == 0 {
		return nil, fmt.Errorf("knowledge file has no exercises")
	}
	return build(f), nil
}

func build(f file) *StaticBase {
	b := &StaticBase{
		landmarks:  make(map[string]Landmarks),
		byName:     make(map[string]Exercise),
		byMuscle:   make(map[string][]string),
		increments: make(map[string]float64),
	}
	for g, lm := range f.MuscleGroups {
		g = strings.ToLower(g)
		b.landmarks[g] = lm
		b.groups = append(b.groups, g)
	}
	sort.Strings(b.groups)

	for _, ex := range f.Exercises {
		b.byName[strings.ToLower(ex.Name)] = ex
		for _, m := range ex.Muscles {
			m = strings.ToLower(m)
			b.byMuscle[m] = append(b.byMuscle[m], ex.Name)
		}
	}
	// Candidates per muscle, highest priority first; name as tiebreak
	// so lookups are deterministic.
	for m := range b.byMuscle {
		names := b.byMuscle[m]
		sort.SliceStable(names, func(i, j int) bool {
			pi, pj := b.Priority(names[i]), b.Priority(names[j])
			if pi != pj {
				return pi > pj
			}
			return names[i] < names[j]
		})
	}
	for eq, inc := range f.EquipmentIncrements {
		b.increments[strings.ToLower(eq)] = inc
	}
	return b
}

func (b *StaticBase) MuscleGroups() []string {
	out := make([]string, len(b.groups))
	copy(out, b.groups)
	return out
}

func (b *StaticBase) GroupLandmarks(muscle string) Landmarks {
	if lm, ok := b.landmarks[strings.ToLower(muscle)]; ok {
		return lm
	}
	return defaultLandmarks
}

func (b *StaticBase) ExercisesForMuscle(muscle string) []string {
	names := b.byMuscle[strings.ToLower(muscle)]
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

func (b *StaticBase) MusclesForExercise(name string) []string {
	ex, ok := b.byName[strings.ToLower(name)]
	if !ok {
		return nil
	}
	out := make([]string, len(ex.Muscles))
	copy(out, ex.Muscles)
	return out
}

func (b *StaticBase) Priority(name string) int {
	return b.byName[strings.ToLower(name)].Priority
}

func (b *StaticBase) Defaults(name string) (Prescription, bool) {
	ex, ok := b.byName[strings.ToLower(name)]
	if !ok || ex.Prescription.Sets == 0 {
		return Prescription{}, false
	}
	return ex.Prescription, true
}

func (b *StaticBase) Equipment(name string) string {
	return b.byName[strings.ToLower(name)].Equipment
}

func (b *StaticBase) RepRange(name string) (int, int, bool) {
	ex, ok := b.byName[strings.ToLower(name)]
	if !ok || ex.RepLow == 0 || ex.RepHigh == 0 {
		return 0, 0, false
	}
	return ex.RepLow, ex.RepHigh, true
}

func (b *StaticBase) Increment(equipment string) float64 {
	if inc, ok := b.increments[strings.ToLower(equipment)]; ok {
		return inc
	}
	return 2.5
}

func (b *StaticBase) IsContraindicated(name, injury string) bool {
	ex, ok := b.byName[strings.ToLower(name)]
	if !ok {
		return false
	}
	_, bad := ex.Contraindications[strings.ToLower(injury)]
	return bad
}

func (b *StaticBase) Substitute(name, injury string) (string, bool) {
	ex, ok := b.byName[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	sub, found := ex.Contraindications[strings.ToLower(injury)]
	if !found || sub == "" {
		return "", false
	}
	return sub, true
}

// Compile-time check: *StaticBase satisfies Base.
var _ Base = (*StaticBase)(nil)
