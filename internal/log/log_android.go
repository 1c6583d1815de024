// SPDX-License-Identifier: Unlicense OR MIT

package log

/*
#cgo LDFLAGS: -llog

#include <stdlib.h>
#include <android/log.h>
*/
import "C"

import (
	"bufio"
	"log"
	"log/slog"
	"os"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

const tag = "texturebridge"

// maxLine is the logcat truncation limit from android/log.h.
const maxLine = 1024

var ctag = C.CString(tag)

func init() {
	// Logcat already includes timestamps.
	log.SetFlags(log.Flags() &^ log.LstdFlags)
	// Structured logs go through NewLogcatHandler; whatever still reaches
	// the standard streams is fmt output or a crash report.
	redirect(os.Stdout.Fd(), PriorityInfo)
	redirect(os.Stderr.Fd(), PriorityError)
}

// NewLogcatHandler returns a slog.Handler writing to logcat, one entry per
// record, with the record's level mapped to a logcat priority.
func NewLogcatHandler(opts *slog.HandlerOptions) *Handler {
	return NewHandler(write, opts)
}

func write(prio Priority, msg string) {
	if len(msg) > maxLine {
		msg = msg[:maxLine]
	}
	cmsg := C.CString(msg)
	defer C.free(unsafe.Pointer(cmsg))
	C.__android_log_write(C.int(prio), ctag, cmsg)
}

// redirect replaces fd with a pipe whose lines are written to logcat.
func redirect(fd uintptr, prio Priority) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	if err := unix.Dup3(int(w.Fd()), int(fd), unix.O_CLOEXEC); err != nil {
		panic(err)
	}
	go func() {
		// Longer lines arrive in maxLine sized pieces.
		lines := bufio.NewReaderSize(r, maxLine)
		for {
			line, _, err := lines.ReadLine()
			if err != nil {
				break
			}
			write(prio, string(line))
		}
		// w's fd was dup'ed; its finalizer must not close it.
		runtime.KeepAlive(w)
	}()
}
