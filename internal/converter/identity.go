package converter

import (
	"context"

	"github.com/google/uuid"

	adldap "github.com/barthuttinga/ldaptools/internal/ldap"
)

// WindowsGUID converts binary objectGUID values. In filters (SEARCH_TO) the
// bytes are hex escaped.
type WindowsGUID struct {
	Base
	handler *adldap.GUIDHandler
}

func (*WindowsGUID) encodesFilterValues() {}

func NewWindowsGUID() *WindowsGUID {
	return &WindowsGUID{handler: adldap.NewGUIDHandler()}
}

func (c *WindowsGUID) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameWindowsGUID, raw, func(s string) (string, error) {
		return c.handler.GUIDBytesToString([]byte(s))
	})
}

func (c *WindowsGUID) ToLDAP(_ context.Context, value any) (*Result, error) {
	if id, ok := value.(uuid.UUID); ok {
		value = id.String()
	}
	return encodeEach(NameWindowsGUID, value, func(guid string) (string, error) {
		if c.operationType == OperationSearchTo {
			return c.handler.GUIDToFilterValue(guid)
		}
		b, err := c.handler.StringToGUIDBytes(guid)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

// WindowsSID converts binary objectSid values. In filters (SEARCH_TO) the
// bytes are hex escaped.
type WindowsSID struct {
	Base
	handler *adldap.SIDHandler
}

func (*WindowsSID) encodesFilterValues() {}

func NewWindowsSID() *WindowsSID {
	return &WindowsSID{handler: adldap.NewSIDHandler()}
}

func (c *WindowsSID) FromLDAP(_ context.Context, raw []string) (any, error) {
	return decodeEach(NameWindowsSID, raw, func(s string) (string, error) {
		return c.handler.ConvertBinarySIDToString([]byte(s))
	})
}

func (c *WindowsSID) ToLDAP(_ context.Context, value any) (*Result, error) {
	return encodeEach(NameWindowsSID, value, func(sid string) (string, error) {
		b, err := c.handler.ConvertStringSIDToBinary(sid)
		if err != nil {
			return "", err
		}
		if c.operationType == OperationSearchTo {
			return adldap.HexEscape(b), nil
		}
		return string(b), nil
	})
}
