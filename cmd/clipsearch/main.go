package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "clipsearch"}

	root.AddCommand(serveCMD(), migrateCMD(), importCMD(), recheckCMD(), tenantCMD(), adminCMD())
	_ = root.Execute()
}
