// Package sstable - Sorted String Table (SSTable) is one of the most popular
// outputs for storing, processing, and exchanging datasets. As the name itself
// implies, an SSTable is a simple abstraction to efficiently store large
// numbers of records while optimizing for high throughput, sequential
// read/write workloads.
//
// Records are stored in record.Compare order: by partition key, then ID,
// then watermark. Several versions of one ID may be stored; Get returns the
// newest.
//
// Basic usage:
//
//	// Writing records
//	writer, err := sstable.OpenWriterFile(path, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rec := record.Impl{
//	    ID:           "key1",
//	    PartitionKey: "partition1",
//	    Timestamp:    time.Now(),
//	    Data:         []byte("value1"),
//	}
//
//	if err := writer.Write(rec); err != nil {
//	    log.Fatal(err)
//	}
//	writer.Close()
//
//	// Reading records
//	reader, err := sstable.OpenReaderFile(path, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	// Get specific record
//	rec, err := reader.Get("partition1", "key1")
//
//	// Iterate all records
//	for rec := range reader.All() {
//	    // Process record
//	}
//
// A TableReader is a random-access, sized concat.Range, so tables can be
// joined with concat.New and the joined view keeps random access:
//
//	v := concat.New[record.Record](older, newer)
//
// File Format:
//   - Header (16 bytes):
//   - Magic number (8 bytes, "SSTB" in hex)
//   - Format version (8 bytes)
//   - Records:
//   - Sequence of recordio records in sorted order
//   - Index:
//   - Count of index entries (8 bytes)
//   - Sequence of (partition key, ID, offset) triples, one per record
//   - Footer (16 bytes):
//   - Index offset (8 bytes)
//   - Magic number (8 bytes, "ENDB" in hex)
package sstable
