package main

import "gitlab.com/creatorhub/commission_api/cmd"

func main() {
	cmd.Execute()
}
