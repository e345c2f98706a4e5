package test

import (
	"sync"

	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/meetup-psi/meetup/pkg/protocol"
)

// Network is an in-memory transport between the parties of a protocol execution.
//
// Each party gets a buffered inbox. Tamper, when set, is applied to every
// message before delivery and may modify it in place.
type Network struct {
	parties   party.IDSlice
	inboxes   map[party.ID]chan *protocol.Message
	done      chan struct{}
	closedBox chan *protocol.Message
	mtx       sync.Mutex

	Tamper func(msg *protocol.Message)
}

func NewNetwork(parties party.IDSlice) *Network {
	closed := make(chan *protocol.Message)
	close(closed)
	n := &Network{
		parties:   parties,
		inboxes:   make(map[party.ID]chan *protocol.Message, len(parties)),
		done:      make(chan struct{}),
		closedBox: closed,
	}
	size := 4 * (len(parties) + 1)
	for _, id := range parties {
		n.inboxes[id] = make(chan *protocol.Message, size)
	}
	return n
}

// Next returns the inbox of id, or a closed channel once id is done.
func (n *Network) Next(id party.ID) <-chan *protocol.Message {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	c, ok := n.inboxes[id]
	if !ok {
		return n.closedBox
	}
	return c
}

// Send delivers msg to every party it is addressed to which is still running.
func (n *Network) Send(msg *protocol.Message) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if n.Tamper != nil {
		n.Tamper(msg)
	}
	for id, c := range n.inboxes {
		if msg.IsFor(id) {
			c <- msg
		}
	}
}

// Done marks id as finished. The returned channel is closed once every party is done.
func (n *Network) Done(id party.ID) chan struct{} {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	if c, ok := n.inboxes[id]; ok {
		close(c)
		delete(n.inboxes, id)
		if len(n.inboxes) == 0 {
			close(n.done)
		}
	}
	return n.done
}
