// Package catalog holds the static training plans the app schedules workouts from.
//
// Plans are authored as YAML files in the plans directory and embedded into the binary.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RestID is the workout id of the synthetic rest day.
const RestID = "rest"

// Difficulty ranks an alternative exercise relative to the one it replaces.
type Difficulty string

const (
	DifficultyEasier Difficulty = "easier"
	DifficultySame   Difficulty = "same"
	DifficultyHarder Difficulty = "harder"
)

type Alternative struct {
	Name       string     `yaml:"name"       json:"name"`
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
}

// Progression overrides the sets and reps of an exercise during the listed program weeks.
type Progression struct {
	Weeks []int  `yaml:"weeks" json:"weeks"`
	Sets  string `yaml:"sets"  json:"sets"`
	Reps  string `yaml:"reps"  json:"reps"`
}

// Exercise is a template exercise. Sets is "N" or "N-M". Reps is "N", "N-M", "AMRAP" or "time".
type Exercise struct {
	Name              string        `yaml:"name"              json:"name"`
	Sets              string        `yaml:"sets"              json:"sets"`
	Reps              string        `yaml:"reps"              json:"reps"`
	Note              string        `yaml:"note"              json:"note,omitempty"`
	Alternatives      []Alternative `yaml:"alternatives"      json:"alternatives,omitempty"`
	WeeklyProgression []Progression `yaml:"weeklyProgression" json:"weeklyProgression,omitempty"`
}

// Workout is one day's template.
type Workout struct {
	ID        string     `yaml:"id"        json:"id"`
	Title     string     `yaml:"title"     json:"title"`
	Days      []string   `yaml:"days"      json:"days"`
	Tag       string     `yaml:"tag"       json:"tag"`
	Exercises []Exercise `yaml:"exercises" json:"exercises"`
}

// RestDay is returned whenever nothing is scheduled.
//
//nolint:gochecknoglobals // immutable sentinel value.
var RestDay = Workout{
	ID:        RestID,
	Title:     "Rest Day",
	Days:      nil,
	Tag:       "Rest",
	Exercises: []Exercise{},
}

// IsRest reports whether w is the rest day.
func (w Workout) IsRest() bool {
	return w.ID == RestID
}

// ScheduledOn reports whether the template assigns w to day.
func (w Workout) ScheduledOn(day time.Weekday) bool {
	return slices.ContainsFunc(w.Days, func(name string) bool {
		d, err := ParseWeekday(name)
		return err == nil && d == day
	})
}

// Plan is a named weekly template.
type Plan struct {
	ID          string    `yaml:"id"          json:"id"`
	Title       string    `yaml:"title"       json:"title"`
	Description string    `yaml:"description" json:"description"`
	Workouts    []Workout `yaml:"workouts"    json:"workouts"`
	// TotalWorkoutsPerWeek is the number of completed sessions that finishes a program week. It defaults to the
	// number of scheduled days.
	TotalWorkoutsPerWeek int `yaml:"totalWorkoutsPerWeek" json:"totalWorkoutsPerWeek"`
}

// Workout looks up a workout by id within the plan.
func (p Plan) Workout(id string) (Workout, bool) {
	i := slices.IndexFunc(p.Workouts, func(w Workout) bool { return w.ID == id })
	if i < 0 {
		return Workout{}, false
	}
	return p.Workouts[i], true
}

// RequiredWorkoutIDs returns the distinct workout ids that must all be completed for a program week to count.
func (p Plan) RequiredWorkoutIDs() []string {
	ids := make([]string, 0, len(p.Workouts))
	for _, w := range p.Workouts {
		if len(w.Days) > 0 && !slices.Contains(ids, w.ID) {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// Catalog is the set of plans plus a flat index of every workout.
type Catalog struct {
	plans    []Plan
	workouts map[string]Workout
}

//go:embed plans/*.yaml
var plansFS embed.FS

// Load parses the embedded plans.
func Load() (*Catalog, error) {
	return Parse(plansFS)
}

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrInvalidPlan = errors.New("invalid plan")
)

// Parse loads every .yaml file in fsys, recursively, as one plan each.
func Parse(fsys fs.FS) (*Catalog, error) {
	var files []string
	if err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path.Ext(p) == ".yaml" {
			files = append(files, p)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk plans: %w", err)
	}
	slices.Sort(files)

	plans := make([]Plan, 0, len(files))
	for _, file := range files {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		var p Plan
		if err = yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", file, err)
		}
		plans = append(plans, p)
	}
	return New(plans...)
}

// New validates plans and indexes their workouts.
func New(plans ...Plan) (*Catalog, error) {
	c := &Catalog{
		plans:    make([]Plan, 0, len(plans)),
		workouts: make(map[string]Workout),
	}
	for _, p := range plans {
		if err := p.prepare(); err != nil {
			return nil, fmt.Errorf("plan %s: %w", p.ID, err)
		}
		if _, ok := c.Plan(p.ID); ok {
			return nil, fmt.Errorf("%w: plan %s", ErrDuplicateID, p.ID)
		}
		c.plans = append(c.plans, p)
		// The first plan defining a workout id owns the index entry.
		for _, w := range p.Workouts {
			if _, ok := c.workouts[w.ID]; !ok {
				c.workouts[w.ID] = w
			}
		}
	}
	return c, nil
}

// prepare validates the plan and fills in TotalWorkoutsPerWeek.
func (p *Plan) prepare() error {
	if p.ID == "" || p.Title == "" {
		return fmt.Errorf("%w: id and title are required", ErrInvalidPlan)
	}
	seen := make(map[string]bool, len(p.Workouts))
	scheduledDays := 0
	for i, w := range p.Workouts {
		if w.ID == "" || w.ID == RestID {
			return fmt.Errorf("%w: workout %d has invalid id %q", ErrInvalidPlan, i, w.ID)
		}
		if seen[w.ID] {
			return fmt.Errorf("%w: workout %s", ErrDuplicateID, w.ID)
		}
		seen[w.ID] = true

		for _, name := range w.Days {
			if _, err := ParseWeekday(name); err != nil {
				return fmt.Errorf("workout %s: %w", w.ID, err)
			}
		}
		scheduledDays += len(w.Days)

		for _, e := range w.Exercises {
			if e.Name == "" {
				return fmt.Errorf("%w: workout %s has an exercise without name", ErrInvalidPlan, w.ID)
			}
			for _, a := range e.Alternatives {
				switch a.Difficulty {
				case DifficultyEasier, DifficultySame, DifficultyHarder:
				default:
					return fmt.Errorf("%w: %s alternative %s has difficulty %q",
						ErrInvalidPlan, e.Name, a.Name, a.Difficulty)
				}
			}
		}
	}
	if p.TotalWorkoutsPerWeek == 0 {
		p.TotalWorkoutsPerWeek = scheduledDays
	}
	return nil
}

// Plans returns all plans in file name order.
func (c *Catalog) Plans() []Plan {
	return slices.Clone(c.plans)
}

// Plan returns the plan with id.
func (c *Catalog) Plan(id string) (Plan, bool) {
	i := slices.IndexFunc(c.plans, func(p Plan) bool { return p.ID == id })
	if i < 0 {
		return Plan{}, false
	}
	return c.plans[i], true
}

// Workout looks up a workout id across every plan.
func (c *Catalog) Workout(id string) (Workout, bool) {
	w, ok := c.workouts[id]
	return w, ok
}

var ErrInvalidWeekday = errors.New("invalid weekday")

// ParseWeekday accepts English weekday names in any case, e.g. "Monday" or "mon".
func ParseWeekday(name string) (time.Weekday, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || (len(name) == 3 && strings.HasPrefix(full, name)) { //nolint:mnd // three letter abbreviation.
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
}
