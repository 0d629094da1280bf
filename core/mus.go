package core

import (
	"time"

	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-composed MUS serializers for the persisted domain types.
// Timestamps are stored as Unix micro; sub-microsecond precision is not
// preserved across a round trip.

var (
	IDMUS             = idSer{}
	RecordMetadataMUS = recordMetadataSer{}
	IndexedRecordMUS  = indexedRecordSer{}
	DocumentMUS       = documentSer{}
)

var (
	_ mus.Serializer[ID]             = IDMUS
	_ mus.Serializer[RecordMetadata] = RecordMetadataMUS
	_ mus.Serializer[IndexedRecord]  = IndexedRecordMUS
	_ mus.Serializer[Document]       = DocumentMUS
)

var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

type idSer struct{}

func (idSer) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idSer) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idSer) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idSer) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type timeSer struct{}

func (timeSer) Marshal(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func (timeSer) Unmarshal(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func (timeSer) Size(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func (timeSer) Skip(bs []byte) (int, error) {
	return varint.Int64.Skip(bs)
}

var timeMUS = timeSer{}

type recordMetadataSer struct{}

func (recordMetadataSer) Marshal(md RecordMetadata, bs []byte) (n int) {
	n = IDMUS.Marshal(md.DocumentId, bs)
	n += varint.Int.Marshal(md.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(md.TotalChunks, bs[n:])
	n += ord.String.Marshal(string(md.AccessLevel), bs[n:])
	n += ord.String.Marshal(md.Department, bs[n:])
	n += ord.String.Marshal(md.SourceName, bs[n:])
	return n
}

func (recordMetadataSer) Unmarshal(bs []byte) (md RecordMetadata, n int, err error) {
	var n1 int
	md.DocumentId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return md, n, err
	}
	md.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return md, n, err
	}
	md.TotalChunks, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return md, n, err
	}
	var level string
	level, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return md, n, err
	}
	md.AccessLevel = AccessLevel(level)
	md.Department, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return md, n, err
	}
	md.SourceName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return md, n, err
}

func (recordMetadataSer) Size(md RecordMetadata) (size int) {
	size = IDMUS.Size(md.DocumentId)
	size += varint.Int.Size(md.ChunkIndex)
	size += varint.Int.Size(md.TotalChunks)
	size += ord.String.Size(string(md.AccessLevel))
	size += ord.String.Size(md.Department)
	size += ord.String.Size(md.SourceName)
	return size
}

func (recordMetadataSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	for i := 0; i < 3; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

type indexedRecordSer struct{}

func (indexedRecordSer) Marshal(record IndexedRecord, bs []byte) (n int) {
	n = ord.String.Marshal(record.ChunkId, bs)
	n += vectorMUS.Marshal(record.Vector, bs[n:])
	n += ord.String.Marshal(record.Text, bs[n:])
	n += RecordMetadataMUS.Marshal(record.Metadata, bs[n:])
	return n
}

func (indexedRecordSer) Unmarshal(bs []byte) (record IndexedRecord, n int, err error) {
	var n1 int
	record.ChunkId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return record, n, err
	}
	record.Vector, n1, err = vectorMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return record, n, err
	}
	record.Metadata, n1, err = RecordMetadataMUS.Unmarshal(bs[n:])
	n += n1
	return record, n, err
}

func (indexedRecordSer) Size(record IndexedRecord) (size int) {
	size = ord.String.Size(record.ChunkId)
	size += vectorMUS.Size(record.Vector)
	size += ord.String.Size(record.Text)
	size += RecordMetadataMUS.Size(record.Metadata)
	return size
}

func (indexedRecordSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return n, err
	}
	n1, err = vectorMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = RecordMetadataMUS.Skip(bs[n:])
	n += n1
	return n, err
}

type documentSer struct{}

func (documentSer) Marshal(doc Document, bs []byte) (n int) {
	n = IDMUS.Marshal(doc.Id, bs)
	n += ord.String.Marshal(doc.Title, bs[n:])
	n += ord.String.Marshal(doc.SourceName, bs[n:])
	n += ord.String.Marshal(doc.FileType, bs[n:])
	n += ord.String.Marshal(string(doc.AccessLevel), bs[n:])
	n += ord.String.Marshal(doc.Department, bs[n:])
	n += varint.Int.Marshal(int(doc.State), bs[n:])
	n += ord.String.Marshal(doc.FailedStage, bs[n:])
	n += ord.String.Marshal(doc.FailureReason, bs[n:])
	n += varint.Int.Marshal(doc.ChunkCount, bs[n:])
	n += timeMUS.Marshal(doc.CreatedAt, bs[n:])
	n += timeMUS.Marshal(doc.UpdatedAt, bs[n:])
	return n
}

func (documentSer) Unmarshal(bs []byte) (doc Document, n int, err error) {
	var n1 int
	doc.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return doc, n, err
	}
	strs := [5]*string{&doc.Title, &doc.SourceName, &doc.FileType, nil, &doc.Department}
	var level string
	strs[3] = &level
	for _, dst := range strs {
		*dst, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return doc, n, err
		}
	}
	doc.AccessLevel = AccessLevel(level)
	var state int
	state, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return doc, n, err
	}
	doc.State = IngestState(state)
	doc.FailedStage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return doc, n, err
	}
	doc.FailureReason, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return doc, n, err
	}
	doc.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return doc, n, err
	}
	doc.CreatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return doc, n, err
	}
	doc.UpdatedAt, n1, err = timeMUS.Unmarshal(bs[n:])
	n += n1
	return doc, n, err
}

func (documentSer) Size(doc Document) (size int) {
	size = IDMUS.Size(doc.Id)
	size += ord.String.Size(doc.Title)
	size += ord.String.Size(doc.SourceName)
	size += ord.String.Size(doc.FileType)
	size += ord.String.Size(string(doc.AccessLevel))
	size += ord.String.Size(doc.Department)
	size += varint.Int.Size(int(doc.State))
	size += ord.String.Size(doc.FailedStage)
	size += ord.String.Size(doc.FailureReason)
	size += varint.Int.Size(doc.ChunkCount)
	size += timeMUS.Size(doc.CreatedAt)
	size += timeMUS.Size(doc.UpdatedAt)
	return size
}

func (documentSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	for i := 0; i < 5; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	for i := 0; i < 2; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	for i := 0; i < 2; i++ {
		n1, err = timeMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
