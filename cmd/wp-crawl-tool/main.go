package main

import cmd "github.com/tatsuyakari1203/wp-crawl-tool/internal/cli"

func main() {
	cmd.Execute()
}
