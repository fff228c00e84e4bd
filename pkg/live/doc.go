// Package live serves interactive force-directed graphs over WebSocket.
//
// Every browser connection is a [Session] with its own [engine.Engine]
// driven by a TickerScheduler. The browser is a thin surface: it reports
// its canvas size and pointer events, and draws the frames it receives.
// The simulation, hit testing, dragging and zooming all run on the server.
//
// # Protocol
//
// Messages are JSON text frames with a "type" field.
//
// Client to server:
//
//	{"type":"hello","width":960,"height":640}
//	{"type":"resize","width":960,"height":640}
//	{"type":"pointer","kind":"pointerdown","x":10,"y":20,"button":0,"pointer":0}
//	{"type":"pointer","kind":"wheel","x":10,"y":20,"deltaY":-120}
//	{"type":"reheat","alpha":0.5}
//	{"type":"reset"}
//
// Server to client:
//
//	{"type":"welcome","session":"<uuid>"}
//	{"type":"frame","frame":{...}}
//	{"type":"event","event":"click","node":"a"}
//	{"type":"error","message":"..."}
//
// Frames are coalesced: a slow client receives the latest frame rather
// than a backlog.
package live
