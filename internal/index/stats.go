package index

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// CountPostings returns the total number of posting lines across every
// shard file under dataDir/storage, used for the control API's aggregate
// word-count statistic. A missing storage directory is not an error: it
// means nothing has been indexed yet.
func CountPostings(dataDir string) (int, error) {
	shardDir := filepath.Join(dataDir, "storage")
	entries, err := os.ReadDir(shardDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".data") {
			continue
		}
		count, err := countLines(filepath.Join(shardDir, entry.Name()))
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		count++
	}
	return count, scanner.Err()
}
