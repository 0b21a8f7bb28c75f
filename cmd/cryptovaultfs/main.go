// Command cryptovaultfs mounts a Cryptomator-format vault as a FUSE
// filesystem.
package main

func main() {
	Execute()
}
