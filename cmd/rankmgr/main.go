// Command rankmgr запускает группы процессов и демонстрирует координатор
// вывода и таймеров.
//
//	rankmgr launch -n 4 -- rankmgr demo
//	rankmgr demo --local 4
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}
