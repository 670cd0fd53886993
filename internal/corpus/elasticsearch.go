// internal/corpus/elasticsearch.go
package corpus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "gematria-workers/internal/common/errors"
	"gematria-workers/internal/matcher"
)

// wordDocument is the stored shape of one corpus entry. Seq preserves the
// order words were indexed in and is unique across bulk calls.
type wordDocument struct {
	Word   string          `json:"word"`
	Seq    int             `json:"seq"`
	Values json.RawMessage `json:"values"`
}

// ElasticsearchIndex keeps the corpus in a search index, one document per
// word keyed by the word itself.
type ElasticsearchIndex struct {
	client  *elasticsearch.Client
	index   string
	maxSize int
}

func NewElasticsearchIndex(client *elasticsearch.Client, index string, maxSize int) *ElasticsearchIndex {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &ElasticsearchIndex{client: client, index: index, maxSize: maxSize}
}

func (x *ElasticsearchIndex) Name() string { return "elasticsearch:" + x.index }

func (x *ElasticsearchIndex) Load(ctx context.Context) ([]matcher.CorpusEntry, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"seq": "asc"},
			map[string]interface{}{"word.keyword": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"}},
		},
		"_source": []string{"word", "seq", "values"},
	})
	size := x.maxSize

	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, x.client)
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(x.index)
	}
	if res.IsError() {
		return nil, apperrors.NewCorpusLoadFailedError(x.Name(), fmt.Errorf("search: %s", res.String()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source wordDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewCorpusLoadFailedError(x.Name(), fmt.Errorf("decode search response: %w", err))
	}

	entries := make([]matcher.CorpusEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		e := matcher.CorpusEntry{Token: hit.Source.Word}
		if len(hit.Source.Values) > 0 {
			if err := json.Unmarshal(hit.Source.Values, &e.Values); err != nil {
				return nil, apperrors.NewCorpusLoadFailedError(x.Name(), fmt.Errorf("word %q: %w", hit.Source.Word, err))
			}
		}
		entries = append(entries, e)
	}
	return normalize(entries), nil
}

// nextSeq returns one past the highest seq stored, or 0 for an empty or
// missing index.
func (x *ElasticsearchIndex) nextSeq(ctx context.Context) (int, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"max_seq": map[string]interface{}{"max": map[string]interface{}{"field": "seq"}},
		},
	})
	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return 0, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if res.IsError() {
		return 0, apperrors.NewCorpusWriteFailedError(x.Name(), fmt.Errorf("max seq: %s", res.String()))
	}

	var parsed struct {
		Aggregations struct {
			MaxSeq struct {
				Value *float64 `json:"value"`
			} `json:"max_seq"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, apperrors.NewCorpusWriteFailedError(x.Name(), fmt.Errorf("decode max seq: %w", err))
	}
	if parsed.Aggregations.MaxSeq.Value == nil {
		return 0, nil
	}
	return int(*parsed.Aggregations.MaxSeq.Value) + 1, nil
}

// Index writes entries with the bulk API and waits for them to become
// searchable. Existing documents for the same word are replaced and move
// behind the words already stored.
func (x *ElasticsearchIndex) Index(ctx context.Context, entries []matcher.CorpusEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	offset, err := x.nextSeq(ctx)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	for i, e := range entries {
		meta, _ := json.Marshal(map[string]interface{}{
			"index": map[string]interface{}{"_index": x.index, "_id": e.Token},
		})
		values, err := json.Marshal(e.Values)
		if err != nil {
			return 0, apperrors.NewCorpusWriteFailedError(x.Name(), err)
		}
		doc, _ := json.Marshal(wordDocument{Word: e.Token, Seq: offset + i, Values: values})

		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "wait_for",
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return 0, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, apperrors.NewCorpusWriteFailedError(x.Name(), fmt.Errorf("bulk: %s", res.String()))
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, apperrors.NewCorpusWriteFailedError(x.Name(), fmt.Errorf("decode bulk response: %w", err))
	}

	if parsed.Errors {
		var reasons []string
		for _, item := range parsed.Items {
			for _, op := range item {
				if op.Error != nil {
					reasons = append(reasons, op.Error.Reason)
				}
			}
		}
		return 0, apperrors.NewCorpusWriteFailedError(x.Name(), fmt.Errorf("bulk item failures: %s", strings.Join(reasons, "; ")))
	}

	return len(parsed.Items), nil
}
