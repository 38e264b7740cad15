package room

import "time"

// Event types delivered to room members.
const (
	MessageTypeRoomEvent = "ROOM_EVENT"

	EventNewAudioSource = "NEW_AUDIO_SOURCE"
)

// Event is a structured room event. Events are created once per
// occurrence and never mutated.
type Event struct {
	Type string `json:"type"`
	// ID is the fileID of the audio source for NEW_AUDIO_SOURCE events.
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	AddedAt  int64  `json:"addedAt"` // epoch millis
	AddedBy  string `json:"addedBy"`
}

// Message is the envelope delivered over the session transport.
type Message struct {
	Type  string `json:"type"`
	Event Event  `json:"event"`
}

// NewAudioSourceEvent builds the event announcing a freshly persisted
// audio file. Duration is a placeholder (the audio is not probed) and
// AddedBy carries the room id rather than a member id; both match the
// wire contract clients currently consume.
func NewAudioSourceEvent(fileID, title, roomID string) Event {
	return Event{
		Type:     EventNewAudioSource,
		ID:       fileID,
		Title:    title,
		Duration: 1,
		AddedAt:  time.Now().UnixMilli(),
		AddedBy:  roomID,
	}
}

// Notifier delivers an event to all members currently joined to a room,
// at-least-once, fire and forget.
type Notifier interface {
	Publish(roomID string, event Event) error
}
