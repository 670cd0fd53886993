// internal/workers/gematria/sync-corpus/models.go
package synccorpus

const (
	TargetPostgres      = "postgres"
	TargetElasticsearch = "elasticsearch"
)

// Input names the words to publish. Words wins over URL; with neither the
// built-in sample list is used. Targets defaults to every configured store.
type Input struct {
	Words   []string `json:"words,omitempty"`
	URL     string   `json:"url,omitempty"`
	Targets []string `json:"targets,omitempty"`
}

type Output struct {
	Source     string   `json:"source"`
	EntryCount int      `json:"entryCount"`
	Upserted   int      `json:"upserted"`
	Indexed    int      `json:"indexed"`
	Targets    []string `json:"targets"`
	SyncedAt   string   `json:"syncedAt"`
}
