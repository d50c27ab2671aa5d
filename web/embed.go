// Package web holds the static widget page served at "/".
package web

import _ "embed"

// Index is the widget page. It forwards user actions to the session API and
// shows the HTML fragment the server renders.
//
//go:embed index.html
var Index []byte
