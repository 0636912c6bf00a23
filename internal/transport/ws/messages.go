package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// События канала присутствия
const (
	EventJoin   = "join"   // {roomId, userId}
	EventLeave  = "leave"  // {roomId, userId}
	EventUpdate = "update" // исходящее подтверждение
)

const (
	ActionJoined = "joined"
	ActionLeft   = "left"
)

type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type PresencePayload struct {
	RoomID ID `json:"roomId"`
	UserID ID `json:"userId"`
}

type UpdatePayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Action string `json:"action"`
}

// ID принимает строку или число; клиенты шлют userId в обоих видах.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("id must be a string or a number")
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}
