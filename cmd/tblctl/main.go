// Command tblctl validates, repairs and de-conflicts the .tbl data tables
// of Falcom ed8-engine games.
package main

func main() {
	execute()
}
