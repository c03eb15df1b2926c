/*
Package pubsub provides a generic, non-blocking publish/subscribe broker.

The label registry announces every mutation through a Publisher; consumers
subscribe with a context and receive events on a buffered channel:

	broker := pubsub.NewBroker[labels.Event]()
	defer broker.Close()

	events := broker.Subscribe(ctx)
	for ev := range events {
	    fmt.Println(ev.Type, ev.Payload.Action, ev.Payload.LabelID)
	}

Publishing never blocks. A subscriber whose buffer is full misses the event;
Dropped reports how many deliveries were skipped that way.
*/
package pubsub
