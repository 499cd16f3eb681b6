package converter

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Built-in converter names.
const (
	NameBool                    = "bool"
	NameInt                     = "int"
	NameEnum                    = "enum"
	NameGeneralizedTime         = "generalized_time"
	NameWindowsGeneralizedTime  = "windows_generalized_time"
	NameWindowsTime             = "windows_time"
	NameAccountExpires          = "account_expires"
	NameLockoutTime             = "lockout_time"
	NameADTimeSpan              = "ad_time_span"
	NameWindowsGUID             = "windows_guid"
	NameWindowsSID              = "windows_sid"
	NameWindowsAccountName      = "windows_account_name"
	NameEncodeWindowsPassword   = "encode_windows_password"
	NamePasswordMustChange      = "password_must_change"
	NameFlags                   = "flags"
	NameGroupType               = "group_type"
	NameValueToDN               = "value_to_dn"
	NamePrimaryGroup            = "primary_group"
	NameGroupMembership         = "group_membership"
	NameExchangeProxyAddress    = "exchange_proxy_address"
	NameExchangeVersion         = "exchange_version"
	NameExchangeObjectVersion   = "exchange_object_version"
	NameExchangeRoles           = "exchange_roles"
	NameExchangeLegacyDN        = "exchange_legacy_dn"
	NameExchangeRecipientPolicy = "exchange_recipient_policy"
	NameGPOLink                 = "gpo_link"
	NameLogonWorkstations       = "logon_workstations"
	NameGPOptions               = "gpoptions"
	NameFunctionalLevel         = "functional_level"
	NameWindowsSecurity         = "windows_security"
	NameLDAPType                = "ldap_type"
)

// Factory produces a new converter instance. Its result is only checked
// against the Converter interface when the name is resolved.
type Factory func() any

// Registry maps converter names to factories. It is safe for concurrent use;
// the converters it returns are not.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in converters registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	for name, factory := range builtins() {
		r.factories[name] = factory
	}
	return r
}

func builtins() map[string]Factory {
	return map[string]Factory{
		NameBool:                    func() any { return &Bool{} },
		NameInt:                     func() any { return &Int{} },
		NameEnum:                    func() any { return &Enum{} },
		NameGeneralizedTime:         func() any { return &GeneralizedTime{} },
		NameWindowsGeneralizedTime:  func() any { return &GeneralizedTime{Windows: true} },
		NameWindowsTime:             func() any { return &WindowsTime{} },
		NameAccountExpires:          func() any { return &AccountExpires{} },
		NameLockoutTime:             func() any { return &LockoutTime{} },
		NameADTimeSpan:              func() any { return &ADTimeSpan{} },
		NameWindowsGUID:             func() any { return NewWindowsGUID() },
		NameWindowsSID:              func() any { return NewWindowsSID() },
		NameWindowsAccountName:      func() any { return &WindowsAccountName{} },
		NameEncodeWindowsPassword:   func() any { return &EncodeWindowsPassword{} },
		NamePasswordMustChange:      func() any { return &PasswordMustChange{} },
		NameFlags:                   func() any { return &Flags{} },
		NameGroupType:               func() any { return &GroupType{} },
		NameValueToDN:               func() any { return &ValueToDN{} },
		NamePrimaryGroup:            func() any { return NewPrimaryGroup() },
		NameGroupMembership:         func() any { return &GroupMembership{} },
		NameExchangeProxyAddress:    func() any { return &ExchangeProxyAddress{} },
		NameExchangeVersion:         func() any { return &ExchangeVersion{} },
		NameExchangeObjectVersion:   func() any { return &ExchangeObjectVersion{} },
		NameExchangeRoles:           func() any { return &ExchangeRoles{} },
		NameExchangeLegacyDN:        func() any { return &ExchangeLegacyDN{} },
		NameExchangeRecipientPolicy: func() any { return NewExchangeRecipientPolicy() },
		NameGPOLink:                 func() any { return &GPLink{} },
		NameLogonWorkstations:       func() any { return &LogonWorkstations{} },
		NameGPOptions:               func() any { return &GPOptions{} },
		NameFunctionalLevel:         func() any { return &FunctionalLevel{} },
		NameWindowsSecurity:         func() any { return &WindowsSecurity{} },
		NameLDAPType:                func() any { return &LDAPType{} },
	}
}

// Register adds a converter under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("attribute converter name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("attribute converter %s: factory cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	r.factories[name] = factory
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Get returns a new instance of the named converter.
func (r *Registry) Get(name string) (Converter, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownConverterError{Name: name}
	}

	instance := factory()
	converter, ok := instance.(Converter)
	if !ok {
		return nil, &ContractViolationError{Name: name, Type: fmt.Sprintf("%T", instance)}
	}
	return converter, nil
}
