// Package render defines the output sink consumed during component
// rendering, plus an HTML implementation of it.
//
// The engine never writes markup itself: components emit through a
// Renderer, and decorations wrap what flows through it. Anything that
// can collect the emit calls into a byte stream can serve as the sink;
// HTML is the reference implementation used by the session, the test
// helpers and the demo application.
package render
