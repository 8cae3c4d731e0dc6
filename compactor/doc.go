// Package compactor writes many sorted runs of records into a single SSTable.
//
// Merge handles runs that overlap. It uses a loser tree to merge the runs
// while deduplicating records by partition key and ID, keeping only the most
// recent version of each record and dropping records whose most recent
// version is a tombstone.
//
// Concat handles runs that are already ordered end to end, such as the
// tables of consecutive time windows. It reads them through a single
// concatenation view and copies every record, tombstones included.
//
// Basic usage:
//
//	// Open the inputs; any concat.Range[record.Record] will do
//	older, _ := sstable.OpenReaderFile("older.sst", nil)
//	newer, _ := sstable.OpenReaderFile("newer.sst", nil)
//
//	// Create output file
//	file, err := os.Create("output.sst")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer file.Close()
//
//	// Compact the inputs into an SSTable
//	n, err := compactor.Merge(file, older, newer)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions stream: memory use does not grow with the size of the
// inputs. Storage ranges that expose an Err method are checked once the
// inputs are exhausted, and their errors are returned.
package compactor
