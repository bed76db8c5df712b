// Package sse implements [parley.Requester] for the chat endpoint's chunked
// event stream.
//
// The endpoint answers a POST of {"text": ...} with records of the form
// "data: <JSON>\n\n". Records are framed incrementally by [Framer], which
// retains any partial record across chunk boundaries, and decoded into
// events by [Decoder].
package sse

const readBufferSize = 4096
