package main

import (
	"time"

	"github.com/myrjola/liftplan/internal/analytics"
	"github.com/myrjola/liftplan/internal/catalog"
	"github.com/myrjola/liftplan/internal/workout"
)

type setResponse struct {
	SetIndex  int        `json:"setIndex"`
	Weight    string     `json:"weight"`
	Reps      string     `json:"reps"`
	Saved     bool       `json:"saved"`
	SavedAt   *time.Time `json:"savedAt,omitempty"`
	Removable bool       `json:"removable"`
}

type exerciseResponse struct {
	Name         string        `json:"name"`
	OriginalName string        `json:"originalName,omitempty"`
	IsSwapped    bool          `json:"isSwapped"`
	TargetSets   string        `json:"targetSets"`
	TargetReps   string        `json:"targetReps"`
	Note         string        `json:"note,omitempty"`
	Expanded     bool          `json:"expanded"`
	Sets         []setResponse `json:"sets"`
}

type sessionResponse struct {
	ID          string             `json:"id"`
	TemplateID  string             `json:"templateId"`
	Title       string             `json:"title"`
	Tag         string             `json:"tag"`
	Date        string             `json:"date"`
	ProgramWeek *int               `json:"programWeek"`
	Status      workout.Status     `json:"status"`
	StartedAt   time.Time          `json:"startedAt"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	Exercises   []exerciseResponse `json:"exercises"`
}

func newSessionResponse(sess workout.Session) sessionResponse {
	exercises := make([]exerciseResponse, len(sess.Exercises))
	for i, e := range sess.Exercises {
		sets := make([]setResponse, len(e.Sets))
		for j, s := range e.Sets {
			sets[j] = setResponse{
				SetIndex:  s.SetIndex,
				Weight:    s.Weight,
				Reps:      s.Reps,
				Saved:     s.Saved,
				SavedAt:   s.SavedAt,
				Removable: workout.CanRemoveSet(e, s),
			}
		}
		exercises[i] = exerciseResponse{
			Name:         e.Name,
			OriginalName: e.OriginalName,
			IsSwapped:    e.IsSwapped,
			TargetSets:   e.TargetSets,
			TargetReps:   e.TargetReps,
			Note:         e.Note,
			Expanded:     e.Expanded,
			Sets:         sets,
		}
	}
	return sessionResponse{
		ID:          sess.ID,
		TemplateID:  sess.TemplateID,
		Title:       sess.Title,
		Tag:         sess.Tag,
		Date:        workout.DateKey(sess.Date),
		ProgramWeek: sess.ProgramWeek,
		Status:      sess.Status,
		StartedAt:   sess.StartedAt,
		CompletedAt: sess.CompletedAt,
		Exercises:   exercises,
	}
}

type dayResponse struct {
	Date       string `json:"date"`
	WorkoutID  string `json:"workoutId"`
	Title      string `json:"title"`
	Tag        string `json:"tag"`
	IsRest     bool   `json:"isRest"`
	Overridden bool   `json:"overridden"`
}

func newDayResponse(day workout.ScheduledDay) dayResponse {
	return dayResponse{
		Date:       workout.DateKey(day.Date),
		WorkoutID:  day.Workout.ID,
		Title:      day.Workout.Title,
		Tag:        day.Workout.Tag,
		IsRest:     day.Workout.IsRest(),
		Overridden: day.Overridden,
	}
}

type overrideResponse struct {
	Date      string `json:"date"`
	WorkoutID string `json:"workoutId"`
}

type rescheduleResponse struct {
	MovedWorkoutID   string             `json:"movedWorkoutId"`
	MovedToDate      string             `json:"movedToDate"`
	Chain            []overrideResponse `json:"chain"`
	Absorbed         bool               `json:"absorbed"`
	DroppedWorkoutID *string            `json:"droppedWorkoutId"`
}

func newRescheduleResponse(result workout.RescheduleResult) rescheduleResponse {
	chain := make([]overrideResponse, len(result.Chain))
	for i, o := range result.Chain {
		chain[i] = overrideResponse{Date: workout.DateKey(o.Date), WorkoutID: o.WorkoutID}
	}
	resp := rescheduleResponse{
		MovedWorkoutID:   result.MovedWorkout.ID,
		MovedToDate:      workout.DateKey(result.MovedToDate),
		Chain:            chain,
		Absorbed:         result.Absorbed,
		DroppedWorkoutID: nil,
	}
	if result.Dropped != nil {
		resp.DroppedWorkoutID = &result.Dropped.ID
	}
	return resp
}

type progressResponse struct {
	PlanID        string `json:"planId"`
	CurrentWeek   int    `json:"currentWeek"`
	PreviousWeek  *int   `json:"previousWeek"`
	Cycle         int    `json:"cycle"`
	StartDate     string `json:"startDate"`
	WeekStartedOn string `json:"weekStartedOn"`
}

func newProgressResponse(p workout.ProgramProgress) progressResponse {
	return progressResponse{
		PlanID:        p.PlanID,
		CurrentWeek:   p.CurrentWeek,
		PreviousWeek:  p.PreviousWeek,
		Cycle:         p.Cycle,
		StartDate:     workout.DateKey(p.StartDate),
		WeekStartedOn: workout.DateKey(p.WeekStartedOn),
	}
}

type weekAdvanceResponse struct {
	ShouldAdvance bool `json:"shouldAdvance"`
	CompletedWeek int  `json:"completedWeek"`
	NextWeek      int  `json:"nextWeek"`
	CurrentWeek   int  `json:"currentWeek"`
}

type completionResponse struct {
	Session sessionResponse      `json:"session"`
	Advance *weekAdvanceResponse `json:"advance"`
}

func newCompletionResponse(c workout.Completion) completionResponse {
	resp := completionResponse{Session: newSessionResponse(c.Session), Advance: nil}
	if c.Advance != nil {
		resp.Advance = &weekAdvanceResponse{
			ShouldAdvance: c.Advance.ShouldAdvance,
			CompletedWeek: c.Advance.CompletedWeek,
			NextWeek:      c.Advance.NextWeek,
			CurrentWeek:   c.Advance.CurrentWeek,
		}
	}
	return resp
}

type bestSetResponse struct {
	Exercise string  `json:"exercise"`
	SetIndex int     `json:"setIndex"`
	Weight   float64 `json:"weight"`
	Reps     float64 `json:"reps"`
	Volume   float64 `json:"volume"`
}

type statsResponse struct {
	TotalVolume        float64          `json:"totalVolume"`
	TotalSets          int              `json:"totalSets"`
	TotalReps          float64          `json:"totalReps"`
	BestSet            *bestSetResponse `json:"bestSet"`
	ExercisesCompleted int              `json:"exercisesCompleted"`
	ExerciseCount      int              `json:"exerciseCount"`
}

func newStatsResponse(s analytics.SessionStats) statsResponse {
	resp := statsResponse{
		TotalVolume:        s.TotalVolume,
		TotalSets:          s.TotalSets,
		TotalReps:          s.TotalReps,
		BestSet:            nil,
		ExercisesCompleted: s.ExercisesCompleted,
		ExerciseCount:      s.ExerciseCount,
	}
	if s.BestSet != nil {
		resp.BestSet = &bestSetResponse{
			Exercise: s.BestSet.Exercise,
			SetIndex: s.BestSet.SetIndex,
			Weight:   s.BestSet.Weight,
			Reps:     s.BestSet.Reps,
			Volume:   s.BestSet.Volume,
		}
	}
	return resp
}

type sessionStatsResponse struct {
	Session sessionResponse `json:"session"`
	Stats   statsResponse   `json:"stats"`
}

type weekStatsResponse struct {
	Week          int     `json:"week"`
	Sessions      int     `json:"sessions"`
	TotalVolume   float64 `json:"totalVolume"`
	TotalSets     int     `json:"totalSets"`
	TotalReps     float64 `json:"totalReps"`
	AverageVolume float64 `json:"averageVolume"`
}

type personalRecordResponse struct {
	Exercise string  `json:"exercise"`
	Weight   float64 `json:"weight"`
	Reps     float64 `json:"reps"`
	Volume   float64 `json:"volume"`
	Date     string  `json:"date"`
}

type bodyweightResponse struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weightKg"`
}

type dashboardResponse struct {
	WorkoutStreak     int                      `json:"workoutStreak"`
	CardioStreak      int                      `json:"cardioStreak"`
	CompletedSessions int                      `json:"completedSessions"`
	ProgramWeek       progressResponse         `json:"programWeek"`
	Weeks             []weekStatsResponse      `json:"weeks"`
	LatestBodyweight  *bodyweightResponse      `json:"latestBodyweight"`
	PersonalRecords   []personalRecordResponse `json:"personalRecords"`
}

func newDashboardResponse(d workout.Dashboard) dashboardResponse {
	weeks := make([]weekStatsResponse, len(d.Weeks))
	for i, w := range d.Weeks {
		weeks[i] = weekStatsResponse(w)
	}
	records := make([]personalRecordResponse, len(d.PersonalRecords))
	for i, pr := range d.PersonalRecords {
		records[i] = personalRecordResponse{
			Exercise: pr.Exercise,
			Weight:   pr.Weight,
			Reps:     pr.Reps,
			Volume:   pr.Volume,
			Date:     workout.DateKey(pr.Date),
		}
	}
	resp := dashboardResponse{
		WorkoutStreak:     d.WorkoutStreak,
		CardioStreak:      d.CardioStreak,
		CompletedSessions: d.CompletedSessions,
		ProgramWeek:       newProgressResponse(d.ProgramWeek),
		Weeks:             weeks,
		LatestBodyweight:  nil,
		PersonalRecords:   records,
	}
	if d.LatestBodyweight != nil {
		bw := newBodyweightResponse(*d.LatestBodyweight)
		resp.LatestBodyweight = &bw
	}
	return resp
}

func newBodyweightResponse(e workout.BodyweightEntry) bodyweightResponse {
	return bodyweightResponse{Date: workout.DateKey(e.Date), WeightKg: e.WeightKg}
}

type cardioResponse struct {
	ID         int      `json:"id"`
	Date       string   `json:"date"`
	Kind       string   `json:"kind"`
	Minutes    int      `json:"minutes"`
	DistanceKm *float64 `json:"distanceKm"`
}

func newCardioResponse(c workout.CardioSession) cardioResponse {
	return cardioResponse{
		ID:         c.ID,
		Date:       workout.DateKey(c.Date),
		Kind:       c.Kind,
		Minutes:    c.Minutes,
		DistanceKm: c.DistanceKm,
	}
}

type exerciseTemplateResponse struct {
	catalog.Exercise
	NoteHTML string `json:"noteHtml,omitempty"`
}

type workoutTemplateResponse struct {
	ID        string                     `json:"id"`
	Title     string                     `json:"title"`
	Days      []string                   `json:"days"`
	Tag       string                     `json:"tag"`
	Exercises []exerciseTemplateResponse `json:"exercises"`
}

type planResponse struct {
	ID                   string                    `json:"id"`
	Title                string                    `json:"title"`
	Description          string                    `json:"description"`
	TotalWorkoutsPerWeek int                       `json:"totalWorkoutsPerWeek"`
	Workouts             []workoutTemplateResponse `json:"workouts"`
}

// newPlanResponse renders the markdown notes of every exercise of plan.
func newPlanResponse(plan catalog.Plan) (planResponse, error) {
	workouts := make([]workoutTemplateResponse, len(plan.Workouts))
	for i, w := range plan.Workouts {
		exercises := make([]exerciseTemplateResponse, len(w.Exercises))
		for j, e := range w.Exercises {
			noteHTML, err := e.NoteHTML()
			if err != nil {
				return planResponse{}, err
			}
			exercises[j] = exerciseTemplateResponse{Exercise: e, NoteHTML: noteHTML}
		}
		workouts[i] = workoutTemplateResponse{
			ID:        w.ID,
			Title:     w.Title,
			Days:      w.Days,
			Tag:       w.Tag,
			Exercises: exercises,
		}
	}
	return planResponse{
		ID:                   plan.ID,
		Title:                plan.Title,
		Description:          plan.Description,
		TotalWorkoutsPerWeek: plan.TotalWorkoutsPerWeek,
		Workouts:             workouts,
	}, nil
}
