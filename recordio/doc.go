// Package recordio implements a binary record format for storing and retrieving
// record.Record instances. Every record starts with magic bytes and a kind byte
// that tells a record.Impl from a record.Tombstone, followed by length-prefixed
// fields.
//
// Basic usage:
//
//	// Writing a record
//	rec := record.Impl{
//	    ID:           "record1",
//	    PartitionKey: "partition1",
//	    Timestamp:    time.Now(),
//	    Data:         []byte("Hello, World!"),
//	}
//
//	var buf bytes.Buffer
//	n, err := recordio.Write(&buf, rec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reading records
//	for rec := range recordio.Seq(&buf) {
//	    fmt.Printf("Read record: %s\n", rec.GetID())
//	}
//
// Encoded records can also take part in a concatenation. NewStream reads an
// io.Reader once and is an input range. NewSection reads a byte window of an
// io.ReaderAt and is a forward range whose cursors are byte offsets, so it can
// be traversed any number of times:
//
//	v := concat.New(recordio.NewSection(f, 0, n), recordio.NewStream(os.Stdin))
package recordio
