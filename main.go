// main is the entry point for the trendgate CLI.
package main

import (
	"github.com/huangsam/trendgate/cmd"
	"github.com/huangsam/trendgate/internal/contract"
	"github.com/huangsam/trendgate/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)

	err := cmd.Execute()

	// LogFatal exits the process, so release resources first
	iocache.CloseStores()
	if profErr := cmd.StopProfiling(); profErr != nil {
		contract.LogWarn("Failed to stop profiling", profErr)
	}

	if err != nil {
		contract.LogFatal("trendgate failed", err)
	}
}
