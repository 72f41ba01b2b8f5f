package common

// Version версия сервиса, проставляется при сборке через -ldflags
var Version = "0.1.0"
