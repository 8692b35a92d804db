package cluster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const nodeIDFile = ".node_id"

// idMu serializes identity resolution so only one goroutine of this process
// ever writes the identity file.
var idMu sync.Mutex

// InitNodeID returns the durable identity of the node installed at path. On
// first run a fresh UUID is generated and persisted; every later run reads
// the same value back.
func InitNodeID(path string) (string, error) {
	idMu.Lock()
	defer idMu.Unlock()

	idPath := filepath.Join(path, nodeIDFile)

	data, err := os.ReadFile(idPath)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id == "" {
			return "", fmt.Errorf("node id file %s is empty", idPath)
		}
		return id, nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("read node id file %s: %w", idPath, err)
	}

	id := uuid.NewString()

	// O_EXCL guards against another process of the same installation racing
	// the first write.
	f, err := os.OpenFile(idPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			data, rerr := os.ReadFile(idPath)
			if rerr != nil {
				return "", fmt.Errorf("reread node id file %s: %w", idPath, rerr)
			}
			return strings.TrimSpace(string(data)), nil
		}
		return "", fmt.Errorf("create node id file %s: %w", idPath, err)
	}

	if _, err := f.WriteString(id + "\n"); err != nil {
		f.Close()
		return "", fmt.Errorf("write node id file %s: %w", idPath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close node id file %s: %w", idPath, err)
	}

	return id, nil
}
