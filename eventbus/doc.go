// Package eventbus publishes committed domain events.
//
// A Publisher hands events one by one, in recording order, to a Dispatcher and stops at the
// first failure. Dispatchers are the transport: Bus delivers in-process to subscribed handlers,
// redisstream.Dispatcher appends to a Redis stream, and Fanout combines several of them.
package eventbus
