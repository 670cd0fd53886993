// internal/corpus/remote.go
package corpus

import (
	"context"
	"strings"

	apperrors "gematria-workers/internal/common/errors"
	apphttp "gematria-workers/internal/common/http"
	"gematria-workers/internal/matcher"
)

// RemoteSource fetches a word list over HTTP. A JSON content type or a
// .json URL selects the entry format.
type RemoteSource struct {
	URL    string
	Client *apphttp.Client
}

func (r RemoteSource) Name() string { return "url:" + r.URL }

func (r RemoteSource) Load(ctx context.Context) ([]matcher.CorpusEntry, error) {
	res, err := r.Client.Get(ctx, r.URL)
	if err != nil {
		return nil, apperrors.NewCorpusLoadFailedError(r.Name(), err)
	}

	asJSON := strings.Contains(res.ContentType, "json") || isJSONPath(strings.SplitN(r.URL, "?", 2)[0])
	entries, err := Parse(res.Body, asJSON)
	if err != nil {
		return nil, apperrors.NewCorpusLoadFailedError(r.Name(), err)
	}
	return entries, nil
}
