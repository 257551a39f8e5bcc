package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "ProteinPaint Query Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the ProteinPaint genomic region query API!"
	SERVICE_DESCRIPTION ServiceInfo = "Region query and track-data aggregation engine serving the ProteinPaint browser client."
	SERVICE_CONTACT     ServiceInfo = "mailto:genomeuser@stjude.org"

	SERVICE_ARTIFACT    ServiceInfo = "proteinpaint"
	SERVICE_VERSION     ServiceInfo = "0.0.1"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.stjude:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
