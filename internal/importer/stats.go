package importer

// Stats tracks one file's import outcome. For most passes Created counts
// persisted rows and Processed equals Created + Skipped; the tag pass
// counts new game-tag relations in Created instead.
type Stats struct {
	Processed int
	Created   int
	Skipped   int

	DevelopersCreated int
	PublishersCreated int
	PlatformsCreated  int
	CategoriesCreated int
	GenresCreated     int
	TagsCreated       int
}

// Status is the consolidated outcome of a full import run.
type Status string

const (
	StatusOK       Status = "OK"
	StatusPartial  Status = "PARTIAL"
	StatusRejected Status = "REJECTED"
)

// Report is the run-level summary returned by the orchestrator.
type Report struct {
	Status          Status  `json:"status"`
	Games           int     `json:"games"`
	Developers      int     `json:"developers"`
	Publishers      int     `json:"publishers"`
	Genres          int     `json:"genres"`
	Tags            int     `json:"tags"`
	SkippedLines    int     `json:"skipped_lines"`
	DurationSeconds float64 `json:"duration_seconds"`
}
