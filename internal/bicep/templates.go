package bicep

// Module templates, one per supported resource type. Rendered with the
// buildContext for a service. Unsupported types fall back to the
// generic template, which emits the declaration verbatim with the
// service's property bag.

const mainTemplate = `targetScope = 'subscription'

@description('Region for the resource group and all resources')
param location string
{{range .SecureParams}}
@secure()
param {{.}} string
{{end}}
var tags = {
{{- range $k, $v := .Tags}}
  {{$k}}: '{{$v}}'
{{- end}}
}

resource rg 'Microsoft.Resources/resourceGroups@2023-07-01' = {
  name: '{{.ResourceGroup}}'
  location: location
  tags: tags
}
{{range .Modules}}
module {{.Symbol}} 'modules/{{.File}}' = {
  name: '{{.Name}}'
  scope: rg
  params: {
    location: location
{{- range .Params}}
    {{.Name}}: {{.Value}}
{{- end}}
  }
}
{{end}}`

const staticSiteTemplate = `param location string

resource site 'Microsoft.Web/staticSites@2023-12-01' = {
  name: '{{.Service.Name}}'
  location: location
  sku: {
    name: '{{.SKU}}'
    tier: '{{.SKU}}'
  }
  properties: {}
}

output defaultHostname string = site.properties.defaultHostname
`

const postgresTemplate = `param location string
@secure()
param administratorPassword string

resource server 'Microsoft.DBforPostgreSQL/flexibleServers@2024-08-01' = {
  name: '{{.Service.Name}}'
  location: location
  sku: {
    name: '{{.SKU}}'
    tier: 'GeneralPurpose'
  }
  properties: {
    version: '16'
    administratorLogin: '{{.Service.Name}}admin'
    administratorLoginPassword: administratorPassword
    storage: {
      storageSizeGB: 32
    }
  }
}

output fqdn string = server.properties.fullyQualifiedDomainName
`

const managedEnvironmentTemplate = `param location string
param logAnalyticsCustomerId string
@secure()
param logAnalyticsSharedKey string

resource env 'Microsoft.App/managedEnvironments@2024-03-01' = {
  name: '{{.Service.Name}}'
  location: location
  properties: {
    appLogsConfiguration: {
      destination: 'log-analytics'
      logAnalyticsConfiguration: {
        customerId: logAnalyticsCustomerId
        sharedKey: logAnalyticsSharedKey
      }
    }
  }
}

output environmentId string = env.id
`

const containerAppTemplate = `param location string
param environmentId string

resource app 'Microsoft.App/containerApps@2024-03-01' = {
  name: '{{.Service.Name}}'
  location: location
  properties: {
    managedEnvironmentId: environmentId
    configuration: {
      ingress: {
        external: true
        targetPort: 8080
      }
    }
    template: {
      containers: [
        {
          name: '{{.Service.Name}}'
          image: '{{.Image}}'
          resources: {
            cpu: json('{{.CPU}}')
            memory: '{{.Memory}}'
          }
        }
      ]
    }
  }
}

output fqdn string = app.properties.configuration.ingress.fqdn
`

const logAnalyticsTemplate = `param location string

resource workspace 'Microsoft.OperationalInsights/workspaces@2023-09-01' = {
  name: '{{.Service.Name}}'
  location: location
  properties: {
    sku: {
      name: 'PerGB2018'
    }
    retentionInDays: 30
  }
}

output customerId string = workspace.properties.customerId
output workspaceId string = workspace.id
output primarySharedKey string = workspace.listKeys().primarySharedKey
`

const genericTemplate = `param location string

resource res '{{.Service.Type}}@{{.APIVersion}}' = {
  name: '{{.Service.Name}}'
  location: location
{{- if .SKU}}
  sku: {
    name: '{{.SKU}}'
  }
{{- end}}
  properties: json('{{.PropertiesJSON}}')
}
`
