package operation_test

import (
	"fmt"

	"github.com/barthuttinga/ldaptools/internal/operation"
)

func ExampleRenameOperation_Arguments() {
	op := operation.NewRenameOperation("cn=foo,dc=example,dc=local").
		SetNewRDN("cn=bar").
		SetNewLocation("ou=people,dc=example,dc=local").
		SetDeleteOldRDN(false)

	fmt.Println(op.Arguments()...)
	// Output: cn=foo,dc=example,dc=local cn=bar ou=people,dc=example,dc=local false
}
