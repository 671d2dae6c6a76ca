package main

import "github.com/danielpatrickdp/pixelthreat/internal/cli"

func main() {
	cli.Execute()
}
