package ingest

import "fathomupload/internal/document"

// Batch 是同一目标集合下按到达顺序排列的文档。
type Batch struct {
	Destination string
	Documents   []document.Document
}

// BatchBuilder 按目标集合分组文档，保留组内顺序，目标集合按首次出现排序。
type BatchBuilder struct {
	index   map[string]int
	batches []Batch
	count   int
}

func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{index: make(map[string]int)}
}

// Add 追加一条文档，不做去重。
func (b *BatchBuilder) Add(doc document.Normalized) {
	i, ok := b.index[doc.Destination]
	if !ok {
		i = len(b.batches)
		b.index[doc.Destination] = i
		b.batches = append(b.batches, Batch{Destination: doc.Destination})
	}
	b.batches[i].Documents = append(b.batches[i].Documents, doc.Payload)
	b.count++
}

// Len 返回已加入的文档总数。
func (b *BatchBuilder) Len() int {
	return b.count
}

// Batches 返回分组结果；没有任何文档时返回 ErrNoValidDocuments。
func (b *BatchBuilder) Batches() ([]Batch, error) {
	if b.count == 0 {
		return nil, ErrNoValidDocuments
	}
	return b.batches, nil
}

// BuildBatches 一次性分组。
func BuildBatches(docs []document.Normalized) ([]Batch, error) {
	b := NewBatchBuilder()
	for _, doc := range docs {
		b.Add(doc)
	}
	return b.Batches()
}
