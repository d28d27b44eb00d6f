package memory

import (
	"encoding/binary"
	"math"

	dommem "github.com/pastlight/recollect/internal/domain/memory"
)

// Hash field names for point payloads. The vector field is indexed; the
// rest are plain hash fields returned via RETURN.
const (
	fieldText           = "text"
	fieldTimestamp      = "timestamp"
	fieldRole           = "role"
	fieldProject        = "project"
	fieldConversationID = "conversation_id"
	fieldVector         = "vector"
)

func payloadFields() []string {
	return []string{fieldText, fieldTimestamp, fieldRole, fieldProject, fieldConversationID}
}

func payloadToFields(p dommem.Payload, vector []float32) map[string]string {
	fields := map[string]string{
		fieldText:   p.Text,
		fieldVector: vectorToBytes(vector),
	}
	if p.Timestamp != "" {
		fields[fieldTimestamp] = p.Timestamp
	}
	if p.Role != "" {
		fields[fieldRole] = p.Role
	}
	if p.Project != "" {
		fields[fieldProject] = p.Project
	}
	if p.ConversationID != "" {
		fields[fieldConversationID] = p.ConversationID
	}
	return fields
}

func fieldsToPayload(fields map[string]string) dommem.Payload {
	return dommem.Payload{
		Text:           fields[fieldText],
		Timestamp:      fields[fieldTimestamp],
		Role:           fields[fieldRole],
		Project:        fields[fieldProject],
		ConversationID: fields[fieldConversationID],
	}
}

// vectorToBytes serializes a vector as little-endian FLOAT32, the layout the
// FT vector index expects in hash fields.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
