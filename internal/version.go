package internal

// Version is the wortschatz release, overridden at build time via
// -ldflags "-X codeberg.org/snonux/wortschatz/internal.Version=..."
var Version = "0.1.0"
