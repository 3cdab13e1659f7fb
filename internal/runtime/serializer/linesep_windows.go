//go:build windows

package serializer

// LineSeparator is the platform line separator.
const LineSeparator = "\r\n"
