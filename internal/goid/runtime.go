package goid

import "runtime"

func runtimeStack(buf []byte, all bool) int {
	return runtime.Stack(buf, all)
}
