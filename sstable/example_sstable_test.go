package sstable_test

import (
	"bytes"
	"fmt"
	"time"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/sstable"
)

// ExampleOpenWriter demonstrates creating an SSTable and writing a record.
func ExampleOpenWriter() {
	// Create an in-memory buffer to act as the file.
	var buf bytes.Buffer

	// Initialize the SSTable writer.
	writer, err := sstable.OpenWriter(&buf, nil)
	if err != nil {
		fmt.Printf("Error opening writer: %v\n", err)
		return
	}

	// Create a new record.
	rec := record.Impl{
		ID:           "exampleKey",
		PartitionKey: "examplePartition",
		Timestamp:    time.Now(),
		Data:         []byte("exampleValue"),
	}

	// Write the record to the SSTable.
	if err := writer.Write(rec); err != nil {
		fmt.Printf("Error writing record: %v\n", err)
		return
	}

	// Close the writer to flush data.
	if err := writer.Close(); err != nil {
		fmt.Printf("Error closing writer: %v\n", err)
		return
	}
	// Output:
}

// ExampleOpenReader demonstrates reading an sstable back.
func ExampleOpenReader() {
	var buf bytes.Buffer

	writer, err := sstable.OpenWriter(&buf, nil)
	if err != nil {
		fmt.Printf("Error opening writer: %v\n", err)
		return
	}

	rec := record.Impl{
		ID:           "exampleKey",
		PartitionKey: "examplePartition",
		Timestamp:    time.Now(),
		Data:         []byte("exampleValue"),
	}

	if err := writer.Write(rec); err != nil {
		fmt.Printf("Error writing record: %v\n", err)
		return
	}

	if err := writer.Close(); err != nil {
		fmt.Printf("Error closing writer: %v\n", err)
		return
	}

	// Initialize the SSTable reader.
	reader, err := sstable.OpenReader(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		fmt.Printf("Error opening reader: %v\n", err)
		return
	}
	defer reader.Close()

	// Retrieve the record by key.
	readRecord, err := reader.Get("examplePartition", "exampleKey")
	if err != nil {
		fmt.Printf("Error reading record: %v\n", err)
		return
	}

	// Print the retrieved record's data.
	fmt.Println(string(readRecord.GetData()))

	// Read all records
	for rec := range reader.All() {
		fmt.Println(rec.GetID())
	}
	// Output:
	// exampleValue
	// exampleKey
}

// ExampleTableReader_Begin jumps into the middle of two joined tables.
func ExampleTableReader_Begin() {
	open := func(ids ...string) *sstable.TableReader {
		var buf bytes.Buffer
		w, _ := sstable.OpenWriter(&buf, nil)
		for _, id := range ids {
			_ = w.Write(record.Impl{ID: id})
		}
		_ = w.Close()
		r, _ := sstable.OpenReader(bytes.NewReader(buf.Bytes()), nil)
		return r
	}

	v := concat.New[record.Record](open("a", "b"), open("c", "d", "e"))

	c := concat.Seek(v, 3)
	fmt.Println(c.Value().GetID())

	// Output: d
}
