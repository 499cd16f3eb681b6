package flags

// Security descriptor control bits (SECURITY_DESCRIPTOR_CONTROL).
var (
	SelfRelative       = Flag{Name: "SelfRelative", Short: "SR", Bit: 0x8000}
	RMControlValid     = Flag{Name: "RMControlValid", Short: "RM", Bit: 0x4000}
	SACLProtected      = Flag{Name: "SACLProtected", Short: "PS", Bit: 0x2000}
	DACLProtected      = Flag{Name: "DACLProtected", Short: "PD", Bit: 0x1000}
	SACLAutoInherited  = Flag{Name: "SACLAutoInherited", Short: "SI", Bit: 0x0800}
	DACLAutoInherited  = Flag{Name: "DACLAutoInherited", Short: "DI", Bit: 0x0400}
	SACLAutoInheritReq = Flag{Name: "SACLComputedInheritanceRequired", Short: "SC", Bit: 0x0200}
	DACLAutoInheritReq = Flag{Name: "DACLComputedInheritanceRequired", Short: "DC", Bit: 0x0100}
	ServerSecurity     = Flag{Name: "ServerSecurity", Short: "SS", Bit: 0x0080}
	DACLTrusted        = Flag{Name: "DACLTrusted", Short: "DT", Bit: 0x0040}
	SACLDefaulted      = Flag{Name: "SACLDefaulted", Short: "SD", Bit: 0x0020}
	SACLPresent        = Flag{Name: "SACLPresent", Short: "SP", Bit: 0x0010}
	DACLDefaulted      = Flag{Name: "DACLDefaulted", Short: "DD", Bit: 0x0008}
	DACLPresent        = Flag{Name: "DACLPresent", Short: "DP", Bit: 0x0004}
	GroupDefaulted     = Flag{Name: "GroupDefaulted", Short: "GD", Bit: 0x0002}
	OwnerDefaulted     = Flag{Name: "OwnerDefaulted", Short: "OD", Bit: 0x0001}
)

// ControlFlagsTable is the security descriptor control family.
var ControlFlagsTable = NewTable("control",
	SelfRelative, RMControlValid, SACLProtected, DACLProtected,
	SACLAutoInherited, DACLAutoInherited, SACLAutoInheritReq, DACLAutoInheritReq,
	ServerSecurity, DACLTrusted, SACLDefaulted, SACLPresent,
	DACLDefaulted, DACLPresent, GroupDefaulted, OwnerDefaulted,
)

// ControlFlags interprets a security descriptor control field.
func ControlFlags(value uint16) Flags {
	return New(ControlFlagsTable, uint64(value))
}

// AccessMaskTable holds the generic and directory-service access rights in SDDL
// order.
var AccessMaskTable = NewTable("access mask",
	Flag{Name: "GenericAll", Short: "GA", Bit: 0x10000000},
	Flag{Name: "GenericRead", Short: "GR", Bit: 0x80000000},
	Flag{Name: "GenericWrite", Short: "GW", Bit: 0x40000000},
	Flag{Name: "GenericExecute", Short: "GX", Bit: 0x20000000},
	Flag{Name: "ReadControl", Short: "RC", Bit: 0x00020000},
	Flag{Name: "Delete", Short: "SD", Bit: 0x00010000},
	Flag{Name: "WriteDACL", Short: "WD", Bit: 0x00040000},
	Flag{Name: "WriteOwner", Short: "WO", Bit: 0x00080000},
	Flag{Name: "ReadProperty", Short: "RP", Bit: 0x00000010},
	Flag{Name: "WriteProperty", Short: "WP", Bit: 0x00000020},
	Flag{Name: "CreateChild", Short: "CC", Bit: 0x00000001},
	Flag{Name: "DeleteChild", Short: "DC", Bit: 0x00000002},
	Flag{Name: "ListChildren", Short: "LC", Bit: 0x00000004},
	Flag{Name: "Self", Short: "SW", Bit: 0x00000008},
	Flag{Name: "ListObject", Short: "LO", Bit: 0x00000080},
	Flag{Name: "DeleteTree", Short: "DT", Bit: 0x00000040},
	Flag{Name: "ControlAccess", Short: "CR", Bit: 0x00000100},
)

// AccessMask interprets an ACE access mask.
func AccessMask(value uint32) Flags {
	return New(AccessMaskTable, uint64(value))
}

// AceFlagsTable holds the ACE header inheritance and audit flags.
var AceFlagsTable = NewTable("ace",
	Flag{Name: "ObjectInherit", Short: "OI", Bit: 0x01},
	Flag{Name: "ContainerInherit", Short: "CI", Bit: 0x02},
	Flag{Name: "NoPropagateInherit", Short: "NP", Bit: 0x04},
	Flag{Name: "InheritOnly", Short: "IO", Bit: 0x08},
	Flag{Name: "Inherited", Short: "ID", Bit: 0x10},
	Flag{Name: "SuccessfulAccess", Short: "SA", Bit: 0x40},
	Flag{Name: "FailedAccess", Short: "FA", Bit: 0x80},
)

// AceFlags interprets an ACE header flags byte.
func AceFlags(value uint8) Flags {
	return New(AceFlagsTable, uint64(value))
}

// UserAccountControlTable holds the userAccountControl bits.
// Short names are not defined by SDDL; they follow the ADS_UF_* suffixes.
var UserAccountControlTable = NewTable("userAccountControl",
	Flag{Name: "Script", Short: "SCRIPT", Bit: 0x00000001},
	Flag{Name: "AccountDisabled", Short: "ACCOUNTDISABLE", Bit: 0x00000002},
	Flag{Name: "HomeDirRequired", Short: "HOMEDIR_REQUIRED", Bit: 0x00000008},
	Flag{Name: "Lockout", Short: "LOCKOUT", Bit: 0x00000010},
	Flag{Name: "PasswordNotRequired", Short: "PASSWD_NOTREQD", Bit: 0x00000020},
	Flag{Name: "PasswordCantChange", Short: "PASSWD_CANT_CHANGE", Bit: 0x00000040},
	Flag{Name: "EncryptedTextPwdAllowed", Short: "ENCRYPTED_TEXT_PWD_ALLOWED", Bit: 0x00000080},
	Flag{Name: "TempDuplicateAccount", Short: "TEMP_DUPLICATE_ACCOUNT", Bit: 0x00000100},
	Flag{Name: "NormalAccount", Short: "NORMAL_ACCOUNT", Bit: 0x00000200},
	Flag{Name: "InterdomainTrustAccount", Short: "INTERDOMAIN_TRUST_ACCOUNT", Bit: 0x00000800},
	Flag{Name: "WorkstationTrustAccount", Short: "WORKSTATION_TRUST_ACCOUNT", Bit: 0x00001000},
	Flag{Name: "ServerTrustAccount", Short: "SERVER_TRUST_ACCOUNT", Bit: 0x00002000},
	Flag{Name: "PasswordNeverExpires", Short: "DONT_EXPIRE_PASSWORD", Bit: 0x00010000},
	Flag{Name: "MNSLogonAccount", Short: "MNS_LOGON_ACCOUNT", Bit: 0x00020000},
	Flag{Name: "SmartCardRequired", Short: "SMARTCARD_REQUIRED", Bit: 0x00040000},
	Flag{Name: "TrustedForDelegation", Short: "TRUSTED_FOR_DELEGATION", Bit: 0x00080000},
	Flag{Name: "NotDelegated", Short: "NOT_DELEGATED", Bit: 0x00100000},
	Flag{Name: "UseDESKeyOnly", Short: "USE_DES_KEY_ONLY", Bit: 0x00200000},
	Flag{Name: "DontRequirePreauth", Short: "DONT_REQ_PREAUTH", Bit: 0x00400000},
	Flag{Name: "PasswordExpired", Short: "PASSWORD_EXPIRED", Bit: 0x00800000},
	Flag{Name: "TrustedToAuthForDelegation", Short: "TRUSTED_TO_AUTH_FOR_DELEGATION", Bit: 0x01000000},
)

// UserAccountControl interprets a userAccountControl value.
func UserAccountControl(value uint32) Flags {
	return New(UserAccountControlTable, uint64(value))
}

// Group type bits.
var (
	GroupTypeSystem      = Flag{Name: "BuiltinLocal", Short: "SYSTEM", Bit: 0x00000001}
	GroupTypeGlobal      = Flag{Name: "Global", Short: "GLOBAL", Bit: 0x00000002}
	GroupTypeDomainLocal = Flag{Name: "DomainLocal", Short: "DOMAIN_LOCAL", Bit: 0x00000004}
	GroupTypeUniversal   = Flag{Name: "Universal", Short: "UNIVERSAL", Bit: 0x00000008}
	GroupTypeAppBasic    = Flag{Name: "AppBasic", Short: "APP_BASIC", Bit: 0x00000010}
	GroupTypeAppQuery    = Flag{Name: "AppQuery", Short: "APP_QUERY", Bit: 0x00000020}
	GroupTypeSecurity    = Flag{Name: "Security", Short: "SECURITY", Bit: 0x80000000}
)

// GroupTypeTable is the groupType family.
var GroupTypeTable = NewTable("groupType",
	GroupTypeSystem, GroupTypeGlobal, GroupTypeDomainLocal, GroupTypeUniversal,
	GroupTypeAppBasic, GroupTypeAppQuery, GroupTypeSecurity,
)

// GroupType interprets a groupType value. Directory servers store it as a
// signed 32-bit integer; the bit pattern is what matters here.
func GroupType(value int32) Flags {
	return New(GroupTypeTable, uint64(uint32(value)))
}

// Exchange server role bits (msExchCurrentServerRoles).
var (
	ExchangeRoleMailbox          = Flag{Name: "Mailbox", Short: "MAILBOX", Bit: 0x02}
	ExchangeRoleClientAccess     = Flag{Name: "ClientAccess", Short: "CLIENT_ACCESS", Bit: 0x04}
	ExchangeRoleUnifiedMessaging = Flag{Name: "UnifiedMessaging", Short: "UNIFIED_MESSAGING", Bit: 0x10}
	ExchangeRoleHubTransport     = Flag{Name: "HubTransport", Short: "HUB_TRANSPORT", Bit: 0x20}
	ExchangeRoleEdgeTransport    = Flag{Name: "EdgeTransport", Short: "EDGE_TRANSPORT", Bit: 0x40}
)

// ExchangeRolesTable is the msExchCurrentServerRoles family.
var ExchangeRolesTable = NewTable("Exchange server role",
	ExchangeRoleMailbox, ExchangeRoleClientAccess, ExchangeRoleUnifiedMessaging,
	ExchangeRoleHubTransport, ExchangeRoleEdgeTransport,
)
