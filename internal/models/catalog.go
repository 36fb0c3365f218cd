package models

// CatalogExercise is an entry of the backend exercise database.
type CatalogExercise struct {
	ID          int    `json:"exercise_id"`
	Name        string `json:"exercise_name"`
	Description string `json:"exercise_desc"`
	BodyPart    string `json:"body_part"`
	Target      string `json:"target"`
	Equipment   string `json:"equipment"`
}

// ExercisePage is one page of the exercise catalog.
type ExercisePage struct {
	Exercises  []CatalogExercise `json:"exercises"`
	TotalPages int               `json:"total_pages"`
}
