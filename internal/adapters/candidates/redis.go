// Package candidates - redis.go is the Redis-backed candidate index.
package candidates

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/ports"
)

// keyPrefix namespaces index entries inside a shared Redis.
const keyPrefix = "faq:"

// RedisIndex implements ports.CandidateIndex on Redis hashes: one hash per
// entry, the embedding stored as little-endian float32 binary.
type RedisIndex struct {
	client   *redis.Client
	embedder ports.EmbeddingService
}

// NewRedisIndex creates a candidate index against the given Redis address.
func NewRedisIndex(addr string, embedder ports.EmbeddingService) (*RedisIndex, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &RedisIndex{client: client, embedder: embedder}, nil
}

// Replace rebuilds the index wholesale from the given records.
func (s *RedisIndex) Replace(ctx context.Context, records []entities.FAQ, embeddings [][]float32) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("clearing entry %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning entries: %w", err)
	}

	for i, record := range records {
		fields := map[string]interface{}{
			"vec": float32sToBytes(embeddings[i]),
			"doc": CompositeDocument(record),
			"q":   record.Question,
			"a":   record.Answer,
			"cat": record.Category,
		}
		if err := s.client.HSet(ctx, keyPrefix+record.ID, fields).Err(); err != nil {
			return fmt.Errorf("storing entry %s: %w", record.ID, err)
		}
	}
	return nil
}

// Query embeds the text and returns the top-k nearest entries, distance
// ascending. Failures are reported as entities.ErrIndexQueryFailed.
func (s *RedisIndex) Query(ctx context.Context, text string, k int) (*entities.CandidateSet, error) {
	queryEmbedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", entities.ErrIndexQueryFailed, err)
	}

	type scored struct {
		id       string
		document string
		meta     entities.CandidateMeta
		distance float64
	}

	var results []scored
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: reading entry %s: %v", entities.ErrIndexQueryFailed, key, err)
		}

		vec := bytesToFloat32s([]byte(fields["vec"]))
		if len(vec) == 0 {
			continue // Skip entries without a vector
		}

		results = append(results, scored{
			id:       key[len(keyPrefix):],
			document: fields["doc"],
			meta: entities.CandidateMeta{
				Question: fields["q"],
				Answer:   fields["a"],
				Category: fields["cat"],
			},
			distance: cosineDistance(queryEmbedding, vec),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning entries: %v", entities.ErrIndexQueryFailed, err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].distance < results[j].distance
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	set := &entities.CandidateSet{}
	for _, r := range results {
		set.IDs = append(set.IDs, r.id)
		set.Documents = append(set.Documents, r.document)
		set.Metadatas = append(set.Metadatas, r.meta)
		set.Distances = append(set.Distances, r.distance)
	}
	return set, nil
}

// Close closes the Redis connection.
func (s *RedisIndex) Close() error {
	return s.client.Close()
}

// float32sToBytes encodes a vector as little-endian float32 binary.
func float32sToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32s decodes a little-endian float32 binary vector.
func bytesToFloat32s(buf []byte) []float32 {
	n := len(buf) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
