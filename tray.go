package main

import _ "embed"

//go:embed build/trayicon.png
var trayIconBytes []byte
