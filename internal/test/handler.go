package test

import (
	"github.com/meetup-psi/meetup/pkg/party"
	"github.com/meetup-psi/meetup/pkg/protocol"
)

// HandlerLoop blocks until the handler has finished. The result of the execution is given by Handler.Result().
func HandlerLoop(id party.ID, h protocol.Handler, network *Network) {
	for {
		select {
		// outgoing messages
		case msg, ok := <-h.Listen():
			if !ok {
				<-network.Done(id)
				// the channel was closed, indicating that the protocol is done executing.
				return
			}
			go network.Send(msg)

		// incoming messages
		case msg, ok := <-network.Next(id):
			if ok {
				h.Accept(msg)
			}
		}
	}
}
