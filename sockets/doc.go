// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package sockets provides the platform-specific socket subsystem
// providers behind api.Provider: Winsock on Windows, a POSIX analogue
// on Linux, and a stub elsewhere.
package sockets
