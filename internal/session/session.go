// Package session holds the in-progress workout being logged: exercises, their
// sets, completion state and the derived set labels and volume.
//
// A Session has a single owner and is not safe for concurrent use.
// Every mutation addresses exercises and sets by position; a stale position
// returns ErrIndexOutOfRange and leaves the session unchanged.
package session

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

var (
	// ErrIndexOutOfRange means an exercise or set position does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInputRejected means a weight or reps edit did not match its numeric format.
	ErrInputRejected = errors.New("input rejected")
	// ErrInvalidOrder means a reorder was not a permutation of the current exercises.
	ErrInvalidOrder = errors.New("invalid exercise order")
	// ErrEmpty means the session has no exercises to submit.
	ErrEmpty = errors.New("session has no exercises")
)

// WarmUpLabel is the display label of every warm-up set.
const WarmUpLabel = "Warm-up"

// Kind classifies a set. Normal and warm-up sets are numbered independently.
type Kind int

const (
	Normal Kind = iota
	WarmUp
)

func (k Kind) String() string {
	if k == WarmUp {
		return "warmup"
	}
	return "normal"
}

// ParseKind accepts "normal" or "warmup".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "normal":
		return Normal, nil
	case "warmup", "warm-up":
		return WarmUp, nil
	}
	return Normal, fmt.Errorf("unknown set kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Field names an editable set field.
type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
)

var (
	weightRe = regexp.MustCompile(`^\d*\.?\d*$`)
	repsRe   = regexp.MustCompile(`^\d*$`)
)

// Set is one logged set. Key is stable for the set's lifetime; Label is
// derived by Renumber and never used as identity.
type Set struct {
	Key    uuid.UUID `json:"key"`
	Label  string    `json:"label"`
	Weight string    `json:"weight"`
	Reps   string    `json:"reps"`
	Done   bool      `json:"done"`
	Kind   Kind      `json:"kind"`
}

// ExerciseDetails describes an exercise picked from the catalog.
type ExerciseDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BodyPart    string `json:"body_part"`
	Target      string `json:"target"`
	Equipment   string `json:"equipment"`
}

// Exercise is an exercise in the session with its ordered sets.
type Exercise struct {
	Key uuid.UUID `json:"key"`
	ExerciseDetails
	Sets []Set `json:"sets"`
}

func (e Exercise) clone() Exercise {
	e.Sets = slices.Clone(e.Sets)
	return e
}

// Session is the ordered collection of exercises being logged.
type Session struct {
	exercises []Exercise
	newKey    func() uuid.UUID
}

// New returns an empty session.
func New() *Session {
	return &Session{newKey: uuid.New}
}

func (s *Session) key() uuid.UUID {
	if s.newKey == nil {
		return uuid.New()
	}
	return s.newKey()
}

func (s *Session) newSet(label string) Set {
	return Set{Key: s.key(), Label: label, Kind: Normal}
}

// Len returns the number of exercises.
func (s *Session) Len() int {
	return len(s.exercises)
}

// Snapshot returns a deep copy of the exercises for read-only rendering.
func (s *Session) Snapshot() []Exercise {
	out := make([]Exercise, len(s.exercises))
	for i, ex := range s.exercises {
		out[i] = ex.clone()
	}
	return out
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() *Session {
	return &Session{exercises: s.Snapshot(), newKey: s.newKey}
}

// Exercise returns a copy of the exercise at index.
func (s *Session) Exercise(index int) (Exercise, error) {
	ex, err := s.exercise(index)
	if err != nil {
		return Exercise{}, err
	}
	return ex.clone(), nil
}

func (s *Session) exercise(index int) (*Exercise, error) {
	if index < 0 || index >= len(s.exercises) {
		return nil, fmt.Errorf("exercise %d of %d: %w", index, len(s.exercises), ErrIndexOutOfRange)
	}
	return &s.exercises[index], nil
}

func (s *Session) set(exIndex, setIndex int) (*Exercise, *Set, error) {
	ex, err := s.exercise(exIndex)
	if err != nil {
		return nil, nil, err
	}
	if setIndex < 0 || setIndex >= len(ex.Sets) {
		return nil, nil, fmt.Errorf("set %d of %d in exercise %d: %w", setIndex, len(ex.Sets), exIndex, ErrIndexOutOfRange)
	}
	return ex, &ex.Sets[setIndex], nil
}

// AddExercise appends an exercise with one Normal set labelled "1" and
// returns its key.
func (s *Session) AddExercise(details ExerciseDetails) uuid.UUID {
	ex := Exercise{
		Key:             s.key(),
		ExerciseDetails: details,
		Sets:            []Set{s.newSet("1")},
	}
	s.exercises = append(s.exercises, ex)
	return ex.Key
}

// RemoveExercise removes the exercise at index.
func (s *Session) RemoveExercise(index int) error {
	if _, err := s.exercise(index); err != nil {
		return err
	}
	s.exercises = slices.Delete(s.exercises, index, index+1)
	return nil
}

// AddSet appends a Normal set labelled one past the current Normal count.
func (s *Session) AddSet(exIndex int) (uuid.UUID, error) {
	ex, err := s.exercise(exIndex)
	if err != nil {
		return uuid.Nil, err
	}
	set := s.newSet(strconv.Itoa(countKind(ex.Sets, Normal) + 1))
	ex.Sets = append(ex.Sets, set)
	return set.Key, nil
}

// RemoveSet deletes a set and renumbers the remaining Normal sets.
func (s *Session) RemoveSet(exIndex, setIndex int) error {
	ex, _, err := s.set(exIndex, setIndex)
	if err != nil {
		return err
	}
	ex.Sets = slices.Delete(ex.Sets, setIndex, setIndex+1)
	Renumber(ex.Sets)
	return nil
}

// UpdateSetField stores value into the weight or reps field. Weight accepts
// digits with at most one decimal point; reps accepts digits only. Empty is
// valid for both. Anything else returns ErrInputRejected with no change.
func (s *Session) UpdateSetField(exIndex, setIndex int, field Field, value string) error {
	_, set, err := s.set(exIndex, setIndex)
	if err != nil {
		return err
	}
	switch field {
	case FieldWeight:
		if !weightRe.MatchString(value) {
			return fmt.Errorf("weight %q: %w", value, ErrInputRejected)
		}
		set.Weight = value
	case FieldReps:
		if !repsRe.MatchString(value) {
			return fmt.Errorf("reps %q: %w", value, ErrInputRejected)
		}
		set.Reps = value
	default:
		return fmt.Errorf("unknown field %q: %w", field, ErrInputRejected)
	}
	return nil
}

// ToggleDone flips the set's completion flag.
func (s *Session) ToggleDone(exIndex, setIndex int) error {
	_, set, err := s.set(exIndex, setIndex)
	if err != nil {
		return err
	}
	set.Done = !set.Done
	return nil
}

// ToggleSetKind flips a set between Normal and WarmUp and renumbers the exercise.
func (s *Session) ToggleSetKind(exIndex, setIndex int) error {
	ex, set, err := s.set(exIndex, setIndex)
	if err != nil {
		return err
	}
	if set.Kind == Normal {
		set.Kind = WarmUp
	} else {
		set.Kind = Normal
	}
	Renumber(ex.Sets)
	return nil
}

// SetKind assigns a kind to a set and renumbers the exercise.
func (s *Session) SetKind(exIndex, setIndex int, kind Kind) error {
	ex, set, err := s.set(exIndex, setIndex)
	if err != nil {
		return err
	}
	set.Kind = kind
	Renumber(ex.Sets)
	return nil
}

// Reorder replaces the exercise order with keys, which must be a
// permutation of the current exercise keys.
func (s *Session) Reorder(keys []uuid.UUID) error {
	if len(keys) != len(s.exercises) {
		return fmt.Errorf("got %d keys for %d exercises: %w", len(keys), len(s.exercises), ErrInvalidOrder)
	}
	byKey := make(map[uuid.UUID]Exercise, len(s.exercises))
	for _, ex := range s.exercises {
		byKey[ex.Key] = ex
	}
	reordered := make([]Exercise, 0, len(keys))
	for _, k := range keys {
		ex, ok := byKey[k]
		if !ok {
			return fmt.Errorf("unknown or repeated key %s: %w", k, ErrInvalidOrder)
		}
		delete(byKey, k)
		reordered = append(reordered, ex)
	}
	s.exercises = reordered
	return nil
}

// Move relocates the exercise at from to position to, shifting the others.
func (s *Session) Move(from, to int) error {
	ex, err := s.exercise(from)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(s.exercises) {
		return fmt.Errorf("move target %d of %d: %w", to, len(s.exercises), ErrIndexOutOfRange)
	}
	moved := *ex
	s.exercises = slices.Delete(s.exercises, from, from+1)
	s.exercises = slices.Insert(s.exercises, to, moved)
	return nil
}

// IndexOf returns the position of the exercise with key, or -1.
func (s *Session) IndexOf(key uuid.UUID) int {
	return slices.IndexFunc(s.exercises, func(ex Exercise) bool { return ex.Key == key })
}

// TotalVolume sums weight × reps over done sets. Unparsable values count as zero.
func (s *Session) TotalVolume() float64 {
	var total float64
	for _, ex := range s.exercises {
		for _, set := range ex.Sets {
			if set.Done {
				total += parseNumber(set.Weight) * parseNumber(set.Reps)
			}
		}
	}
	return total
}

// Discard clears the session.
func (s *Session) Discard() {
	s.exercises = nil
}

// Renumber relabels sets in place: Normal sets become "1".."N" in order,
// warm-up sets become "Warm-up".
func Renumber(sets []Set) {
	n := 0
	for i := range sets {
		if sets[i].Kind == WarmUp {
			sets[i].Label = WarmUpLabel
			continue
		}
		n++
		sets[i].Label = strconv.Itoa(n)
	}
}

func countKind(sets []Set, kind Kind) int {
	n := 0
	for _, set := range sets {
		if set.Kind == kind {
			n++
		}
	}
	return n
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
