// Package wal implements a Write-Ahead Log (WAL) for durable record storage.
//
// A Write-Ahead Log is a reliability mechanism that ensures data persistence by writing
// records sequentially to disk before they are considered committed. The WAL is organized
// into segments, where each segment contains a sorted collection of records.
//
// The Writer buffers records in an ordered set and writes a segment each time
// the configured number of records is pending. Records within a segment are
// sorted; segments follow each other in the order they were written.
//
// Basic usage:
//
//	file, err := os.Create("mywal.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create a new WAL writer with segments of up to 1000 records
//	writer, err := wal.NewWriter(file, 1000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Write records
//	err = writer.Write(myRecord)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Close the writer
//	err = writer.Close()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Read records back
//	file, err = os.Open("mywal.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	reader := wal.NewReader(file)
//
//	// In log order, one segment after the other
//	replay, err := reader.Replay()
//	for rec := range concat.All(replay) {
//	    // Process record
//	}
//
//	// Or merged into a single sorted sequence
//	all, err := reader.ReadAll()
//
// Each segment is a recordio.Section, so Replay is a forward concatenation of
// the segments and can be traversed more than once. Writer.Pending returns
// the records not yet written as another range, which can be appended to a
// replay to see every record the writer has accepted.
//
// File Format:
// Each segment in the WAL consists of:
//   - Segment header: Total size of the segment, header included (8 bytes)
//   - Records: Series of variable-length recordio records
package wal
