package log

// DebugPrefix exposes debugPrefix to the external test package.
var DebugPrefix = debugPrefix
