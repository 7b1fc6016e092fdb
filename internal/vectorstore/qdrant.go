// Package vectorstore provides session-scoped similarity search over a
// shared collection. Every query and delete carries a session filter;
// filter correctness is the invariant this package exists to uphold.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/webwhiz/webwhiz/internal/domain"
	"google.golang.org/grpc"
)

// Qdrant stores chunks in a single shared Qdrant collection,
// partitioned by the session_id payload field.
type Qdrant struct {
	collections qdrant.CollectionsClient
	points      qdrant.PointsClient
	embedder    domain.Embedder
	collection  string
	vectorSize  int
}

func NewQdrant(conn grpc.ClientConnInterface, embedder domain.Embedder, collection string, vectorSize int) *Qdrant {
	return &Qdrant{
		collections: qdrant.NewCollectionsClient(conn),
		points:      qdrant.NewPointsClient(conn),
		embedder:    embedder,
		collection:  collection,
		vectorSize:  vectorSize,
	}
}

// Init creates the shared collection if it does not exist yet.
func (s *Qdrant) Init(ctx context.Context) error {
	collections, err := s.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	for _, col := range collections.GetCollections() {
		if col.GetName() == s.collection {
			return nil
		}
	}

	_, err = s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.vectorSize),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", s.collection, err)
	}
	return nil
}

// Add embeds and upserts chunks. Every chunk must carry a non-empty
// session id; refusing unscoped chunks is what keeps the shared
// collection partitioned.
func (s *Qdrant) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		if c.SessionID == "" {
			return fmt.Errorf("chunk %d has no session id: %w", i, domain.ErrInvalidRequest)
		}
		texts[i] = c.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: uuid.New().String()},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: vectors[i]},
				},
			},
			Payload: map[string]*qdrant.Value{
				"text":                       {Kind: &qdrant.Value_StringValue{StringValue: c.Text}},
				domain.MetadataKeySource:     {Kind: &qdrant.Value_StringValue{StringValue: c.Source}},
				domain.MetadataKeySessionID:  {Kind: &qdrant.Value_StringValue{StringValue: c.SessionID}},
			},
		}
	}

	wait := true
	_, err = s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Query runs nearest-neighbor search restricted to sessionID's entries.
func (s *Qdrant) Query(ctx context.Context, sessionID, question string, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		topK = 4
	}

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vectors[0],
		Limit:          uint64(topK),
		Filter:         sessionFilter(sessionID),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		payload := p.GetPayload()
		results = append(results, domain.ScoredChunk{
			Chunk: domain.Chunk{
				Text:      payload["text"].GetStringValue(),
				Source:    payload[domain.MetadataKeySource].GetStringValue(),
				SessionID: payload[domain.MetadataKeySessionID].GetStringValue(),
			},
			Score: float64(p.GetScore()),
		})
	}
	return results, nil
}

// Delete removes every entry belonging to sessionID. Irreversible.
func (s *Qdrant) Delete(ctx context.Context, sessionID string) error {
	wait := true
	_, err := s.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: sessionFilter(sessionID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete session points: %w", err)
	}
	return nil
}

func sessionFilter(sessionID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key: domain.MetadataKeySessionID,
					Match: &qdrant.Match{
						MatchValue: &qdrant.Match_Keyword{Keyword: sessionID},
					},
				},
			},
		}},
	}
}
