package finding

// Raw type labels emitted by the scanning service. Only the labels the
// derived views consume are named; everything else passes through the
// categorized index untouched.
const (
	TypeEmailAddr             = "EMAILADDR"
	TypePhoneNumber           = "PHONE_NUMBER"
	TypeIPAddress             = "IP_ADDRESS"
	TypeNetblockOwner         = "NETBLOCK_OWNER"
	TypeAffiliateInternetName = "AFFILIATE_INTERNET_NAME"
	TypeInternetName          = "INTERNET_NAME"
	TypeWebserverTechnology   = "WEBSERVER_TECHNOLOGY"
	TypeWebserverBanner       = "WEBSERVER_BANNER"
	TypeSoftwareUsed          = "SOFTWARE_USED"
	TypeOperatingSystem       = "OPERATING_SYSTEM"
	TypeVulnerability         = "VULNERABILITY"
	TypeLeakedData            = "LEAKED_DATA"
	TypeDefaced               = "DEFACED"
	TypeMaliciousIPAddr       = "MALICIOUS_IPADDR"
	TypeMaliciousInternetName = "MALICIOUS_INTERNET_NAME"
	TypePhysicalAddress       = "PHYSICAL_ADDRESS"
	TypeSocialMedia           = "SOCIAL_MEDIA"
	TypeBGPASOwner            = "BGP_AS_OWNER"
	TypeBGPASMember           = "BGP_AS_MEMBER"
	TypeSSLCertMismatch       = "SSL_CERTIFICATE_MISMATCH"
	TypeSSLCertExpired        = "SSL_CERTIFICATE_EXPIRED"
)

// CriticalTypes lists the high-value labels in report priority order.
// The critical-findings view walks this slice and takes at most the first
// five records of each type.
var CriticalTypes = []string{
	TypeEmailAddr,
	TypePhoneNumber,
	TypeIPAddress,
	TypeNetblockOwner,
	TypeAffiliateInternetName,
	TypeInternetName,
	TypeWebserverTechnology,
	TypeVulnerability,
	TypeLeakedData,
	TypeDefaced,
	TypeMaliciousIPAddr,
	TypeMaliciousInternetName,
}

// TypeBucket binds a raw type label to the view bucket it populates.
// Tables are ordered slices: bucket fill order follows table order, which
// matters wherever two labels merge into one bucket.
type TypeBucket struct {
	Type   string
	Bucket string
}

// TechnologyTypes maps raw technology labels to their human-readable
// report headings.
var TechnologyTypes = []TypeBucket{
	{TypeWebserverTechnology, "Web Servers"},
	{TypeWebserverBanner, "Server Banners"},
	{TypeSoftwareUsed, "Software"},
	{TypeOperatingSystem, "Operating Systems"},
}

// NetworkTypes maps raw labels to the network-intelligence buckets.
var NetworkTypes = []TypeBucket{
	{TypeIPAddress, "ip_addresses"},
	{TypeNetblockOwner, "netblocks"},
	{TypeBGPASOwner, "asn_info"},
	{TypeBGPASMember, "bgp_info"},
}

// ContactTypes maps raw labels to the contact-information buckets.
var ContactTypes = []TypeBucket{
	{TypeEmailAddr, "emails"},
	{TypePhoneNumber, "phone_numbers"},
	{TypePhysicalAddress, "physical_addresses"},
	{TypeSocialMedia, "social_profiles"},
}

// SecurityTypes maps raw labels to the security-findings buckets.
// Two malicious labels merge into one bucket, as do the two SSL labels;
// merged buckets keep this table's order.
var SecurityTypes = []TypeBucket{
	{TypeVulnerability, "vulnerabilities"},
	{TypeMaliciousIPAddr, "malicious_indicators"},
	{TypeMaliciousInternetName, "malicious_indicators"},
	{TypeLeakedData, "leaked_data"},
	{TypeSSLCertMismatch, "ssl_issues"},
	{TypeSSLCertExpired, "ssl_issues"},
}
