package main

import (
	"fmt"
	"strings"

	"k8s.io/klog"
)

// klogAdapter bridges the eeprom package's structured logger onto klog.
// Debug output lands at verbosity 2; the --verbose flag raises klog to that
// level.
type klogAdapter struct{}

func (klogAdapter) Debug(msg string, keysAndValues ...interface{}) {
	klog.V(2).Infof("%s%s", msg, formatKV(keysAndValues))
}

func (klogAdapter) Info(msg string, keysAndValues ...interface{}) {
	klog.Infof("%s%s", msg, formatKV(keysAndValues))
}

func (klogAdapter) Error(msg string, keysAndValues ...interface{}) {
	klog.Errorf("%s%s", msg, formatKV(keysAndValues))
}

func formatKV(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 != 0 {
		fmt.Fprintf(&b, " %v", kv[len(kv)-1])
	}
	return b.String()
}
