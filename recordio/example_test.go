package recordio_test

import (
	"bytes"
	"fmt"
	"time"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/recordio"
)

// ExampleWrite demonstrates writing and reading a single record.
func ExampleWrite() {
	// Create a record
	rec := record.Impl{
		ID:           "test1",
		PartitionKey: "partition1",
		Timestamp:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data:         []byte("Hello, World!"),
	}

	// Write the record to a buffer
	var buf bytes.Buffer
	n, err := recordio.Write(&buf, rec)
	if err != nil {
		fmt.Printf("Error writing record: %v\n", err)
		return
	}

	fmt.Printf("Wrote %d bytes\n", n)

	// Read the record back
	readRecord, err := recordio.ReadRecord(&buf)
	if err != nil {
		fmt.Printf("Error reading record: %v\n", err)
		return
	}

	fmt.Printf("Read record: ID=%s, Data=%s\n",
		readRecord.GetID(), readRecord.GetData())

	// Output:
	// Wrote 75 bytes
	// Read record: ID=test1, Data=Hello, World!
}

// ExampleSeq demonstrates reading multiple records using an iterator.
func ExampleSeq() {
	// Create some records
	records := []record.Record{
		record.Impl{
			ID:        "1",
			Timestamp: time.Now(),
			Data:      []byte("first"),
		},
		record.Impl{
			ID:        "2",
			Timestamp: time.Now(),
			Data:      []byte("second"),
		},
		record.Impl{
			ID:        "3",
			Timestamp: time.Now(),
			Data:      []byte("third"),
		},
	}

	// Write records to a buffer
	var buf bytes.Buffer
	for _, rec := range records {
		_, err := recordio.Write(&buf, rec)
		if err != nil {
			fmt.Printf("Error writing record: %v\n", err)
			return
		}
	}

	// Read records back using iterator
	for rec := range recordio.Seq(&buf) {
		fmt.Printf("Read record: %s = %s\n",
			rec.GetID(), rec.GetData())
	}

	// Output:
	// Read record: 1 = first
	// Read record: 2 = second
	// Read record: 3 = third
}

// ExampleSize demonstrates calculating record sizes.
func ExampleSize() {
	rec := record.Impl{
		ID:           "test1",
		PartitionKey: "partition1",
		Timestamp:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data:         []byte("Hello, World!"),
	}

	size := recordio.Size(rec)
	fmt.Printf("Record will occupy %d bytes\n", size)

	// Write record to verify size calculation
	var buf bytes.Buffer
	n, err := recordio.Write(&buf, rec)
	if err != nil {
		fmt.Printf("Error writing record: %v\n", err)
		return
	}

	fmt.Printf("Actually wrote %d bytes\n", n)

	// Output:
	// Record will occupy 75 bytes
	// Actually wrote 75 bytes
}

// ExampleNewSection concatenates a window of a file with a stream.
func ExampleNewSection() {
	var file bytes.Buffer
	for _, id := range []string{"a", "b", "c"} {
		_, _ = recordio.Write(&file, record.Impl{ID: id})
	}
	skip := recordio.Size(record.Impl{ID: "a"})

	var stream bytes.Buffer
	_, _ = recordio.Write(&stream, record.Tombstone{ID: "a"})

	section := recordio.NewSection(bytes.NewReader(file.Bytes()), skip, int64(file.Len())-skip)
	v := concat.New[record.Record](section, recordio.NewStream(&stream))

	for rec := range concat.All(v) {
		fmt.Println(rec.GetID(), rec.IsTombstone())
	}

	// Output:
	// b false
	// c false
	// a true
}
