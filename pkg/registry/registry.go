// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gematria-workers/internal/common/config"
	apperrors "gematria-workers/internal/common/errors"
	cg "gematria-workers/internal/workers/gematria/calculate-gematria"
	cw "gematria-workers/internal/workers/gematria/compare-words"
	fsw "gematria-workers/internal/workers/gematria/find-similar-words"
	na "gematria-workers/internal/workers/gematria/notify-analysis"
	sc "gematria-workers/internal/workers/gematria/sync-corpus"
)

func codes(cs ...apperrors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// catalog describes every job type the worker manager can serve.
var catalog = []Activity{
	{
		ID:          cg.TaskType,
		DisplayName: "Calculate Gematria",
		Description: "Computes the value of every word of a text under the requested numeral systems",
		Category:    "gematria",
		TaskType:    cg.TaskType,
		ErrorCodes:  codes(apperrors.ErrCodeInvalidArgument),
		Tags:        []string{"values"},
	},
	{
		ID:          fsw.TaskType,
		DisplayName: "Find Similar Words",
		Description: "Finds corpus words whose values lie within the tolerance of each input word",
		Category:    "gematria",
		TaskType:    fsw.TaskType,
		ErrorCodes:  codes(apperrors.ErrCodeSchemaViolation, apperrors.ErrCodeInvalidArgument),
		Tags:        []string{"analysis", "cache"},
	},
	{
		ID:          cw.TaskType,
		DisplayName: "Compare Words",
		Description: "Scores one pair of words system by system",
		Category:    "gematria",
		TaskType:    cw.TaskType,
		ErrorCodes:  codes(apperrors.ErrCodeInvalidArgument),
	},
	{
		ID:          sc.TaskType,
		DisplayName: "Sync Corpus",
		Description: "Writes a word list to PostgreSQL and Elasticsearch",
		Category:    "corpus",
		TaskType:    sc.TaskType,
		ErrorCodes: codes(
			apperrors.ErrCodeInvalidArgument,
			apperrors.ErrCodeCorpusEmpty,
			apperrors.ErrCodeCorpusLoadFailed,
			apperrors.ErrCodeCorpusWriteFailed,
		),
		Tags: []string{"postgres", "elasticsearch"},
	},
	{
		ID:          na.TaskType,
		DisplayName: "Notify Analysis",
		Description: "Sends an analysis summary by SES email and SNS",
		Category:    "notification",
		TaskType:    na.TaskType,
		ErrorCodes:  codes(apperrors.ErrCodeInvalidArgument, apperrors.ErrCodeNotificationSendFailed),
		Tags:        []string{"aws"},
	},
}

// Build returns the catalog with enablement, timeout and retries taken
// from cfg.
func Build(cfg *config.Config) *ActivityRegistry {
	reg := &ActivityRegistry{
		Version:    cfg.App.Version,
		Activities: make([]Activity, len(catalog)),
	}
	for i, a := range catalog {
		wc := config.GetWorkerConfig(cfg, a.TaskType)
		a.Enabled = config.IsWorkerEnabled(cfg, a.TaskType)
		a.Timeout = config.GetDuration(wc.Timeout).String()
		a.Retries = wc.MaxRetries
		a.ErrorCodes = append([]string(nil), a.ErrorCodes...)
		reg.Activities[i] = a
	}
	return reg
}

// Find returns the activity serving taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Enabled returns the task types that will be served.
func (r *ActivityRegistry) Enabled() []string {
	var out []string
	for _, a := range r.Activities {
		if a.Enabled {
			out = append(out, a.TaskType)
		}
	}
	return out
}

// Validate checks that every activity is complete, unique and one the
// worker manager knows how to serve.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if !known(activity.TaskType) {
			return fmt.Errorf("activity %s has unknown task type %q", activity.ID, activity.TaskType)
		}
	}
	return nil
}

func known(taskType string) bool {
	for _, a := range catalog {
		if a.TaskType == taskType {
			return true
		}
	}
	return false
}

// Save writes the registry as indented JSON, creating the directory.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}
