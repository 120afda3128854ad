package stream

// SubscribeTopic joins a gossip topic on the underlying transport,
// for participant discovery by content rather than by already-known
// peer id (see sharedlog's gid presence loop).
func (st *Stream) SubscribeTopic(topic string) (<-chan []byte, error) {
	return st.transport.Subscribe(topic)
}

// PublishTopic broadcasts data on topic.
func (st *Stream) PublishTopic(topic string, data []byte) error {
	return st.transport.Publish(topic, data)
}

// UnsubscribeTopic leaves topic.
func (st *Stream) UnsubscribeTopic(topic string) {
	st.transport.Unsubscribe(topic)
}
