package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidStatus = errors.New("invalid task status")

// TaskStatus is the closed set of task states. The zero value is not a valid status.
type TaskStatus int

const (
	StatusPending TaskStatus = iota + 1
	StatusInProgress
	StatusCompleted
)

var statusLabels = map[TaskStatus]string{
	StatusPending:    "Pendente",
	StatusInProgress: "Em andamento",
	StatusCompleted:  "Concluída",
}

// ParseTaskStatus maps a serialized label back to its TaskStatus.
func ParseTaskStatus(label string) (TaskStatus, error) {
	for s, l := range statusLabels {
		if l == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, label)
}

// String returns the serialized label, or "" for an invalid value.
func (s TaskStatus) String() string {
	return statusLabels[s]
}

func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return json.Marshal(s.String())
}

func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, data)
	}
	parsed, err := ParseTaskStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
