package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// DatasetsGeneratedMessage announces that a fresh set of dataset files has
// been written. Consumers reload from DataDir (or the snapshot) themselves.
type DatasetsGeneratedMessage struct {
	RunID     string    `json:"run_id"`
	Seed      int64     `json:"seed"`
	DataDir   string    `json:"data_dir"`
	Files     []string  `json:"files"`
	Timestamp time.Time `json:"timestamp"`
}

var ErrInvalidMessage = errors.New("invalid datasets generated message")

func NewDatasetsGeneratedMessage(runID string, seed int64, dataDir string, files []string) *DatasetsGeneratedMessage {
	return &DatasetsGeneratedMessage{
		RunID:     runID,
		Seed:      seed,
		DataDir:   dataDir,
		Files:     files,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetsGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetsGeneratedMessageFromJSON decodes a message and rejects one without a run id.
func DatasetsGeneratedMessageFromJSON(data []byte) (*DatasetsGeneratedMessage, error) {
	var msg DatasetsGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RunID == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
