package event

// Event is a named message delivered to real-time clients.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

const (
	EventComplaintAssignment = "complaint:assignment"
	EventComplaintStatus     = "complaint:status"
	EventComplaintChatroom   = "complaint:chatroom"
	EventChatNewMessage      = "chat:new-message"
)

// Emitter is the primitive the rest of the system uses to push events to clients.
type Emitter interface {
	// Broadcast sends the event to every connected client.
	Broadcast(event Event)
	// EmitTo sends the event to the clients that joined a channel.
	EmitTo(channel string, event Event)
}

// ChatroomChannel names the channel scoped to one chatroom.
func ChatroomChannel(chatroomID string) string {
	return "chatroom:" + chatroomID
}
