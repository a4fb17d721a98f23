package common

// Version задаётся при сборке: -ldflags "-X calendarback/internal/application/common.Version=1.2.3"
var Version = "dev"
