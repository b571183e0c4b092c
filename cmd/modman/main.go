// Command modman installs collections of replacement files ("mods") into a
// target directory tree and can later undo those installations, restoring
// the original files. See rootCmd's Long description for an overview.
package main

func main() {
	Execute()
}
