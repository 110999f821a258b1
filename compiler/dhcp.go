package compiler

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	keaconfig "isc.org/keaconverge/appcfg/kea"
	"isc.org/keaconverge/datamodel/daemonname"
	"isc.org/keaconverge/manifest"
	keautil "isc.org/keaconverge/util"
)

// Default interval of the lease file cleanup in seconds.
const defaultLFCInterval int64 = 3600

// Compiles the DHCPv4 or DHCPv6 server configuration.
type dhcpCompiler struct {
	protocol       daemonname.Name
	manifest       *manifest.Manifest
	config         *manifest.DHCPConfig
	sharedNetworks []keaconfig.SharedNetwork
	layout         Layout
	localFqdn      string
}

// Validates the configuration. It returns the first violation found.
func (c *dhcpCompiler) validate() error {
	for _, path := range []string{c.layout.SubnetList, c.layout.SharedNetworkList} {
		if err := validateIncludePath(c.protocol, path); err != nil {
			return err
		}
	}
	if c.config.HA != nil {
		if err := validateHA(c.protocol, c.config.HA, c.localFqdn); err != nil {
			return err
		}
		hooks, err := renderHookLibraries(c.config.HooksLibraries)
		if err != nil {
			return err
		}
		if i := hooks.IndexOf(keaconfig.HAHookLibraryName); i >= 0 {
			return newConfigError(DuplicateHookLibrary, c.protocol, hooks[i].Library,
				"the HA hook library %s must not be listed in hooks_libraries when the ha section is set", hooks[i].Library)
		}
	}
	if db := c.config.LeaseDatabase; db != nil && db.Type != "" && !keaconfig.IsSupportedDatabaseType(db.Type) {
		return newConfigError(InvalidLeaseDatabase, c.protocol, db.Type,
			"lease database type '%s' is not one of memfile, mysql or postgresql", db.Type)
	}
	if err := c.validateSubnets(); err != nil {
		return err
	}
	return c.validateSharedNetworks()
}

// Validates the subnet prefixes, the pools and the subnet file names.
func (c *dhcpCompiler) validateSubnets() error {
	expectedFamily := keautil.IPv4
	if c.protocol == daemonname.DHCPv6 {
		expectedFamily = keautil.IPv6
	}

	stems := make(map[string]string)
	for _, subnet := range c.config.Subnets {
		prefix := subnet.GetPrefix()
		parsed, err := keautil.ParsePrefix(prefix)
		if err != nil {
			return newConfigError(InvalidSubnet, c.protocol, prefix,
				"subnet '%s' is invalid: %s", prefix, err)
		}
		if parsed.Protocol != expectedFamily {
			return newConfigError(InvalidSubnet, c.protocol, prefix,
				"subnet '%s' is not an IPv%d subnet", prefix, expectedFamily)
		}

		for _, pool := range subnet.Pools {
			lb, ub, err := keautil.ParseIPRange(pool.Pool)
			if err != nil || !parsed.ContainsRange(lb, ub) {
				return newConfigError(PoolOutsideSubnet, c.protocol, pool.Pool,
					"pool '%s' does not belong to the subnet '%s'", pool.Pool, prefix)
			}
		}
		for _, pdPool := range subnet.PDPools {
			if _, err := keautil.ParsePrefix(fmt.Sprintf("%s/%d", pdPool.Prefix, pdPool.PrefixLen)); err != nil {
				return newConfigError(InvalidSubnet, c.protocol, pdPool.Prefix,
					"delegated prefix pool '%s/%d' in the subnet '%s' is invalid: %s",
					pdPool.Prefix, pdPool.PrefixLen, prefix, err)
			}
		}

		if err := c.validateReservations(prefix, subnet.Reservations); err != nil {
			return err
		}

		stem := SubnetStem(c.protocol, subnet)
		if !isValidStem(stem) {
			return newConfigError(InvalidIncludePath, c.protocol, stem,
				"subnet '%s' cannot be stored in a file named '%s'", prefix, stem)
		}
		if other, ok := stems[stem]; ok {
			return newConfigError(DuplicateSubnetFilename, c.protocol, stem,
				"subnets '%s' and '%s' resolve to the same file name '%s'", other, prefix, stem)
		}
		if err := validateIncludePath(c.protocol, c.layout.SubnetFile(stem)); err != nil {
			return err
		}
		stems[stem] = prefix
	}
	return nil
}

// Checks that every reservation is identified by exactly one identifier.
func (c *dhcpCompiler) validateReservations(prefix string, reservations []manifest.Reservation) error {
	for i, reservation := range renderReservations(reservations) {
		if count := reservation.CountIdentifiers(); count != 1 {
			return newConfigError(InvalidReservation, c.protocol, prefix,
				"reservation #%d in the subnet '%s' has %d host identifiers, expected one", i+1, prefix, count)
		}
	}
	return nil
}

// Validates the names of the shared networks. The names are the file
// names.
func (c *dhcpCompiler) validateSharedNetworks() error {
	stems := make(map[string]bool)
	for _, sharedNetwork := range c.sharedNetworks {
		stem := sharedNetwork.GetName()
		if !isValidStem(stem) {
			return newConfigError(InvalidIncludePath, c.protocol, stem,
				"shared network name '%s' cannot be used as a file name", stem)
		}
		if stems[stem] {
			return newConfigError(DuplicateSharedNetworkFilename, c.protocol, stem,
				"shared network '%s' is defined more than once", stem)
		}
		if err := validateIncludePath(c.protocol, c.layout.SharedNetworkFile(stem)); err != nil {
			return err
		}
		stems[stem] = true
	}
	return nil
}

// Renders the files. The configuration must be validated first.
func (c *dhcpCompiler) render() (*FileSet, error) {
	fileSet := newFileSet(c.protocol, c.layout.MainFile)

	common, err := c.renderCommon()
	if err != nil {
		return nil, err
	}
	fileSet.ControlSocket = common.ControlSocket
	var document keaconfig.Document
	switch c.protocol {
	case daemonname.DHCPv4:
		document.DHCPv4 = &keaconfig.DHCPv4Config{
			CommonDHCPConfig: *common,
			Subnet4:          keaconfig.Include(c.layout.SubnetList),
			SharedNetworks:   keaconfig.Include(c.layout.SharedNetworkList),
		}
	default:
		document.DHCPv6 = &keaconfig.DHCPv6Config{
			CommonDHCPConfig:  *common,
			PreferredLifetime: keautil.Ptr(keautil.ValueOr(c.config.PreferredLifetime, manifest.DefaultPreferredLifetime)),
			PDAllocator:       c.config.PDAllocator,
			Subnet6:           keaconfig.Include(c.layout.SubnetList),
			SharedNetworks:    keaconfig.Include(c.layout.SharedNetworkList),
		}
	}
	content, err := keaconfig.Marshal(document)
	if err != nil {
		return nil, err
	}
	fileSet.add(c.layout.MainFile, content)

	// Subnets.
	subnetFiles := make([]string, 0, len(c.config.Subnets))
	subnetContents := make([][]byte, 0, len(c.config.Subnets))
	for _, subnet := range c.config.Subnets {
		content, err := keaconfig.Marshal(c.renderSubnet(subnet))
		if err != nil {
			return nil, errors.WithMessagef(err, "cannot render the subnet %s", subnet.GetPrefix())
		}
		subnetFiles = append(subnetFiles, c.layout.SubnetFile(SubnetStem(c.protocol, subnet)))
		subnetContents = append(subnetContents, content)
	}
	fileSet.add(c.layout.SubnetList, keaconfig.MarshalIncludeList(subnetFiles))
	for i, path := range subnetFiles {
		fileSet.add(path, subnetContents[i])
	}
	fileSet.addManagedDirectory(c.layout.SubnetDirectory)

	// Shared networks.
	sharedNetworkFiles := make([]string, 0, len(c.sharedNetworks))
	sharedNetworkContents := make([][]byte, 0, len(c.sharedNetworks))
	for _, sharedNetwork := range c.sharedNetworks {
		content, err := keaconfig.Marshal(normalize(map[string]any(sharedNetwork)))
		if err != nil {
			return nil, errors.WithMessagef(err, "cannot render the shared network %s", sharedNetwork.GetName())
		}
		sharedNetworkFiles = append(sharedNetworkFiles, c.layout.SharedNetworkFile(sharedNetwork.GetName()))
		sharedNetworkContents = append(sharedNetworkContents, content)
	}
	fileSet.add(c.layout.SharedNetworkList, keaconfig.MarshalIncludeList(sharedNetworkFiles))
	for i, path := range sharedNetworkFiles {
		fileSet.add(path, sharedNetworkContents[i])
	}
	fileSet.addManagedDirectory(c.layout.SharedNetworkDirectory)

	return fileSet, nil
}

// Renders the parameters shared by the DHCPv4 and DHCPv6 servers.
func (c *dhcpCompiler) renderCommon() (*keaconfig.CommonDHCPConfig, error) {
	config := c.config
	interfaces := config.Interfaces
	if interfaces == nil {
		interfaces = []string{}
	}

	hooks, err := renderHookLibraries(config.HooksLibraries)
	if err != nil {
		return nil, err
	}
	if config.HA != nil {
		haParams := renderHA(config.HA, c.localFqdn)
		if err := checkRenderedHA(haParams); err != nil {
			return nil, err
		}
		params, err := toRawJSON(haParams)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, keaconfig.HookLibrary{
			Library:    getHAHookLibraryPath(config.HA, c.manifest.HooksDir),
			Parameters: params,
		})
	}

	common := &keaconfig.CommonDHCPConfig{
		InterfacesConfig:      keaconfig.InterfacesConfig{Interfaces: interfaces},
		ControlSocket:         renderControlSocket(c.protocol, config.ControlSocket, c.manifest.RunDir),
		LeaseDatabase:         c.renderLeaseDatabase(),
		ValidLifetime:         keautil.Ptr(keautil.ValueOr(config.ValidLifetime, manifest.DefaultValidLifetime)),
		RenewTimer:            config.RenewTimer,
		RebindTimer:           config.RebindTimer,
		CalculateTeeTimes:     config.CalculateTeeTimes,
		T1Percent:             config.T1Percent,
		T2Percent:             config.T2Percent,
		Allocator:             config.Allocator,
		StoreExtendedInfo:     config.StoreExtendedInfo,
		DDNSSendUpdates:       config.DDNSSendUpdates,
		DDNSQualifyingSuffix:  config.DDNSQualifyingSuffix,
		DDNSReplaceClientName: config.DDNSReplaceClientName,
		OptionData:            renderOptionData(config.OptionData),
		ClientClasses:         renderClientClasses(config.ClientClasses),
		HookLibraries:         hooks,
		Loggers:               renderLoggers(c.protocol, config.Logging, c.manifest.LogDir),
	}
	if elp := config.ExpiredLeasesProcessing; elp != nil {
		common.ExpiredLeasesProcessing = &keaconfig.ExpiredLeasesProcessing{
			ReclaimTimerWaitTime:        elp.ReclaimTimerWaitTime,
			FlushReclaimedTimerWaitTime: elp.FlushReclaimedTimerWaitTime,
			HoldReclaimedTime:           elp.HoldReclaimedTime,
			MaxReclaimLeases:            elp.MaxReclaimLeases,
			MaxReclaimTime:              elp.MaxReclaimTime,
			UnwarnedReclaimCycles:       elp.UnwarnedReclaimCycles,
		}
	}
	if config.SanityChecks != nil {
		common.SanityChecks = &keaconfig.SanityChecks{
			LeaseChecks: config.SanityChecks.LeaseChecks,
		}
	}
	if ddns := config.DHCPDDNS; ddns != nil {
		common.DHCPDDNS = &keaconfig.DHCPDDNS{
			EnableUpdates: ddns.EnableUpdates,
			ServerIP:      ddns.ServerIP,
			ServerPort:    ddns.ServerPort,
			NCRProtocol:   ddns.NCRProtocol,
			NCRFormat:     ddns.NCRFormat,
		}
	}
	return common, nil
}

// Renders the lease database. The memfile database in the Kea state
// directory is used by default.
func (c *dhcpCompiler) renderLeaseDatabase() *keaconfig.Database {
	db := c.config.LeaseDatabase
	if db == nil {
		db = &manifest.Database{}
	}
	rendered := &keaconfig.Database{
		Type:        db.Type,
		Name:        db.Name,
		Host:        db.Host,
		Port:        db.Port,
		User:        db.User,
		Password:    db.Password,
		Persist:     db.Persist,
		LFCInterval: db.LFCInterval,
		Path:        db.Path,
	}
	if rendered.Type == "" {
		rendered.Type = manifest.DefaultLeaseDatabaseType
	}
	if rendered.Type == keaconfig.DatabaseTypeMemfile {
		if rendered.Name == "" {
			leaseFile := fmt.Sprintf("kea-leases%d.csv", c.protocol.Universe())
			rendered.Name = filepath.Join(c.manifest.LibDir, leaseFile)
		}
		if rendered.Persist == nil {
			rendered.Persist = keautil.Ptr(true)
		}
		if rendered.LFCInterval == nil {
			rendered.LFCInterval = keautil.Ptr(defaultLFCInterval)
		}
	}
	return rendered
}

// Renders the subnet stored in a separate file.
func (c *dhcpCompiler) renderSubnet(subnet manifest.Subnet) any {
	common := keaconfig.CommonSubnetParameters{
		ID:            subnet.ID,
		Subnet:        subnet.GetPrefix(),
		Interface:     subnet.Interface,
		ClientClass:   subnet.ClientClass,
		ValidLifetime: subnet.ValidLifetime,
		RenewTimer:    subnet.RenewTimer,
		RebindTimer:   subnet.RebindTimer,
		OptionData:    renderOptionData(subnet.OptionData),
		Reservations:  renderReservations(subnet.Reservations),
	}
	for _, pool := range subnet.Pools {
		common.Pools = append(common.Pools, keaconfig.Pool{
			Pool:        pool.Pool,
			ClientClass: pool.ClientClass,
			OptionData:  renderOptionData(pool.OptionData),
		})
	}
	if c.protocol == daemonname.DHCPv4 {
		return keaconfig.Subnet4{CommonSubnetParameters: common}
	}

	subnet6 := keaconfig.Subnet6{
		CommonSubnetParameters: common,
		PreferredLifetime:      subnet.PreferredLifetime,
	}
	for _, pdPool := range subnet.PDPools {
		subnet6.PDPools = append(subnet6.PDPools, keaconfig.PDPool{
			Prefix:            pdPool.Prefix,
			PrefixLen:         pdPool.PrefixLen,
			DelegatedLen:      pdPool.DelegatedLen,
			ExcludedPrefix:    pdPool.ExcludedPrefix,
			ExcludedPrefixLen: pdPool.ExcludedPrefixLen,
			ClientClass:       pdPool.ClientClass,
			OptionData:        renderOptionData(pdPool.OptionData),
		})
	}
	return subnet6
}
