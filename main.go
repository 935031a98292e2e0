// main is the entry point for the xssbench CLI.
package main

import (
	"os"

	"github.com/huangsam/xssbench/cmd"
	"github.com/huangsam/xssbench/internal/iocache"
	log "github.com/sirupsen/logrus"
)

func main() {
	defer iocache.CloseStores()

	if err := cmd.Execute(); err != nil {
		log.WithError(err).Error("xssbench failed")
		iocache.CloseStores()
		os.Exit(1)
	}
}
